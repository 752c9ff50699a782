package jobs

import "strings"

// Chunk is one semantically-bounded slice of a larger document, with byte
// offsets into the original content so successive chunks can be shown to
// overlap by exactly the configured token window.
type Chunk struct {
	Text        string
	StartOffset int
	EndOffset   int
}

// ChunkerConfig bounds the token-budget chunker. Defaults mirror the
// document-type embedding defaults rather than any single caller's
// request-time override.
type ChunkerConfig struct {
	MaxTokens     int
	MinTokens     int
	OverlapTokens int
}

// DefaultChunkerConfig matches the platform's default chunk_size/
// chunk_overlap pairing used when a document type does not override them.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{MaxTokens: 1000, MinTokens: 100, OverlapTokens: 100}
}

// SemanticChunker splits a document into token-bounded chunks along
// paragraph, heading, and fenced-code-block boundaries, carrying a
// configurable token overlap between consecutive chunks.
type SemanticChunker struct {
	cfg ChunkerConfig
}

func NewSemanticChunker(cfg ChunkerConfig) *SemanticChunker {
	return &SemanticChunker{cfg: cfg}
}

// CountTokens uses the same whitespace tokenization the search engine's
// query analyzer uses; no document carries a model-specific tokenizer, so
// word count is the chunker's one consistent notion of "token".
func CountTokens(content string) int {
	return len(strings.Fields(content))
}

// ShouldChunk reports whether content exceeds limit tokens. Equal to limit
// does not require chunking, only strictly more.
func (c *SemanticChunker) ShouldChunk(content string, limit int) bool {
	return CountTokens(content) > limit
}

// Chunk splits content into pieces of about MaxTokens tokens. Paragraphs,
// markdown headings, and fenced code blocks are treated as atomic units and
// kept whole unless a single unit alone exceeds MaxTokens, in which case it
// is hard-split into MaxTokens-sized pieces. When a chunk closes because the
// next unit would not fit, its last OverlapTokens tokens are carried into
// the head of the next chunk, so a reader or re-embedder sees continuous
// context across the boundary; such a chunk can hold up to MaxTokens plus
// OverlapTokens tokens. Hard-split pieces, and the chunk after them, carry
// no overlap.
func (c *SemanticChunker) Chunk(content string) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []Chunk
	var current []wordToken

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, buildChunk(current))
		current = overlapTail(current, c.cfg.OverlapTokens)
	}

	for _, block := range splitBlocks(content) {
		toks := tokenizeWithOffsets(block.text, block.start)
		if len(toks) == 0 {
			continue
		}

		if len(toks) > c.cfg.MaxTokens {
			flush()
			current = nil
			for start := 0; start < len(toks); start += c.cfg.MaxTokens {
				end := start + c.cfg.MaxTokens
				if end > len(toks) {
					end = len(toks)
				}
				chunks = append(chunks, buildChunk(toks[start:end]))
			}
			continue
		}

		if len(current) > 0 && len(current)+len(toks) > c.cfg.MaxTokens {
			flush()
		}
		current = append(current, toks...)
	}
	if len(current) > 0 {
		chunks = append(chunks, buildChunk(current))
	}
	return chunks
}

// wordToken is one whitespace-delimited token with its byte offsets into
// the original document.
type wordToken struct {
	text  string
	start int
	end   int
}

func tokenizeWithOffsets(s string, base int) []wordToken {
	var toks []wordToken
	i, n := 0, len(s)
	for i < n {
		for i < n && isChunkSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		j := i
		for j < n && !isChunkSpace(s[j]) {
			j++
		}
		toks = append(toks, wordToken{text: s[i:j], start: base + i, end: base + j})
		i = j
	}
	return toks
}

func isChunkSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func overlapTail(toks []wordToken, n int) []wordToken {
	if n <= 0 || n >= len(toks) {
		return nil
	}
	out := make([]wordToken, n)
	copy(out, toks[len(toks)-n:])
	return out
}

func buildChunk(toks []wordToken) Chunk {
	words := make([]string, len(toks))
	for i, t := range toks {
		words[i] = t.text
	}
	return Chunk{
		Text:        strings.Join(words, " "),
		StartOffset: toks[0].start,
		EndOffset:   toks[len(toks)-1].end,
	}
}

// block is a semantic unit of a document: a paragraph, a markdown heading
// and its lead-in text, or one fenced code block, with its byte offset
// into the original content.
type block struct {
	text  string
	start int
}

// splitBlocks partitions content on blank lines and markdown headings,
// treating a ``` ... ``` fence as one atomic block regardless of blank
// lines inside it.
func splitBlocks(content string) []block {
	lines := strings.Split(content, "\n")
	var blocks []block
	var buf []string
	bufStart := -1
	inFence := false
	pos := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		blocks = append(blocks, block{text: strings.Join(buf, "\n"), start: bufStart})
		buf = nil
		bufStart = -1
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lineStart := pos
		pos += len(line) + 1

		isFence := strings.HasPrefix(trimmed, "```")

		switch {
		case isFence && !inFence:
			flush()
			inFence = true
			bufStart = lineStart
			buf = append(buf, line)
		case isFence && inFence:
			buf = append(buf, line)
			inFence = false
			flush()
		case inFence:
			buf = append(buf, line)
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#") && len(buf) > 0:
			flush()
			bufStart = lineStart
			buf = append(buf, line)
		default:
			if bufStart == -1 {
				bufStart = lineStart
			}
			buf = append(buf, line)
		}
	}
	flush()
	return blocks
}
