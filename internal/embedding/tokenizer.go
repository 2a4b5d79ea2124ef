package embedding

// CLIP special token ids and vocabulary size (openai/clip-vit-base-patch32).
const (
	clipStartToken = 49406
	clipEndToken   = 49407
	clipVocabSize  = 49408
)

// Tokenizer produces token ids for CLIP-style text models (input_ids, attention_mask).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token ids.
// It is not the CLIP BPE vocabulary; it is a stand-in that keeps the text
// path runnable against models exported with a matching tokenizer stub.
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token ids up to maxTokens,
// framed by the CLIP start/end tokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64) {
	if maxTokens <= 0 {
		maxTokens = 77
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)

	inputIDs[0] = clipStartToken
	attentionMask[0] = 1

	pos := 1
	for _, word := range SplitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % (clipVocabSize - 2))
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = clipEndToken
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	var words []string
	word := ""
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if word != "" {
				words = append(words, word)
				word = ""
			}
		} else {
			word += string(r)
		}
	}
	if word != "" {
		words = append(words, word)
	}
	return words
}
