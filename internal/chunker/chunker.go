package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"clause-rag/internal/models"
)

// Builder splits over-length clause text into bounded token windows with a
// configured overlap. Window boundaries fall on token edges and every token
// keeps its trailing whitespace, so the original text can be reconstructed
// losslessly from the non-overlap spans.
type Builder struct {
	maxTokens int
	overlap   int
}

// NewBuilder validates the window configuration. The overlap must be
// strictly smaller than the window so every chunk contributes new tokens.
func NewBuilder(maxTokens, overlap int) (*Builder, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", models.ErrConfiguration, maxTokens)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < max tokens %d", models.ErrConfiguration, overlap, maxTokens)
	}
	return &Builder{maxTokens: maxTokens, overlap: overlap}, nil
}

// MaxTokens returns the configured window size.
func (b *Builder) MaxTokens() int { return b.maxTokens }

// Overlap returns the configured overlap size.
func (b *Builder) Overlap() int { return b.overlap }

// Chunk splits the clause text into ordered chunks. Text at or under the
// window size yields exactly one complete chunk; empty text yields none.
func (b *Builder) Chunk(clauseID, text string) []models.Chunk {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) <= b.maxTokens {
		return []models.Chunk{{
			SourceClauseID: clauseID,
			Text:           text,
			IsComplete:     true,
			SequenceIndex:  0,
		}}
	}
	step := b.maxTokens - b.overlap
	var chunks []models.Chunk
	seq := 0
	for start := 0; start < len(tokens); start += step {
		end := start + b.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, models.Chunk{
			SourceClauseID: clauseID,
			Text:           strings.Join(tokens[start:end], ""),
			IsComplete:     false,
			SequenceIndex:  seq,
		})
		seq++
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// Reconstruct rebuilds the original text by concatenating the first chunk
// with the non-overlap span of every following chunk. Used as the ingestion
// round-trip check.
func (b *Builder) Reconstruct(chunks []models.Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c.Text)
			continue
		}
		tokens := tokenize(c.Text)
		if b.overlap >= len(tokens) {
			continue
		}
		sb.WriteString(strings.Join(tokens[b.overlap:], ""))
	}
	return sb.String()
}

// TokenCount is the token-estimated length used against the window bound.
func TokenCount(text string) int {
	return len(tokenize(text))
}

// tokenize splits text into tokens of one non-space run plus its trailing
// whitespace, so that joining tokens reproduces the text byte for byte.
// Leading whitespace forms a token of its own.
func tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string
	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}
	return tokens
}
