package main

import (
	"encoding/json"
	"fmt"

	"github.com/born-ml/seqnn/backend/cpu"
	"github.com/born-ml/seqnn/internal/batch"
	"github.com/born-ml/seqnn/internal/tokenizer"
	"github.com/born-ml/seqnn/nn"
	"github.com/born-ml/seqnn/tensor"
)

// B is the backend the CLI runs on.
type B = *cpu.Backend

// Checkpoint metadata keys.
const (
	metaConfig = "seqnn.config"
	metaWords  = "seqnn.words"
	metaChars  = "seqnn.chars"
)

type modelConfig struct {
	WordDim     int `json:"word_dim"`
	CharDim     int `json:"char_dim"`
	Filters     int `json:"filters"`
	FilterWidth int `json:"filter_width"`
	MaxWordLen  int `json:"max_word_len"`
	Window      int `json:"window"`
	Hidden      int `json:"hidden"`
}

// sentenceEncoder is the full pipeline: word embeddings and a character CNN
// per word, concatenated, widened by a context window, then a BiLSTM.
type sentenceEncoder struct {
	cfg   modelConfig
	words *tokenizer.Vocab
	chars *tokenizer.Vocab

	encoder *nn.BiLSTMEmbedder[B]
	backend B
}

// windowed applies the context window on top of the channel embeddings.
type windowed struct {
	embed  *nn.Concatenate[int32, B]
	window *nn.ContextWindow[B]
}

func (w windowed) Forward(inputs []*tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return w.window.Forward(w.embed.Forward(inputs))
}

func (w windowed) Parameters() []*nn.Parameter[B] {
	return w.embed.Parameters()
}

func (w windowed) ResetParameters() {
	w.embed.ResetParameters()
}

func newSentenceEncoder(cfg modelConfig, words, chars *tokenizer.Vocab, backend B) *sentenceEncoder {
	wordEmbed := nn.NewEmbedding(words.Len(), cfg.WordDim, backend, nn.WithPaddingIdx(int(tokenizer.PadID)))
	charCNN := nn.NewCharCNN(chars.Len(), cfg.CharDim, backend,
		nn.WithNumFilters(cfg.Filters), nn.WithFilterWidth(cfg.FilterWidth))

	embed := nn.NewConcatenate[int32, B](wordEmbed, nn.NewTimeDistributed[int32, B](charCNN))
	window := nn.NewContextWindow[B](cfg.Window)
	embedderSize := window.OutputSize(cfg.WordDim + cfg.Filters)

	return &sentenceEncoder{
		cfg:   cfg,
		words: words,
		chars: chars,
		encoder: nn.NewBiLSTMEmbedder[B](windowed{embed: embed, window: window}, embedderSize, cfg.Hidden, backend,
			nn.WithPadding(tokenizer.PadID)),
		backend: backend,
	}
}

// Encode returns the [batch, seq, 2*hidden] encodings and the length of
// every sentence.
func (m *sentenceEncoder) Encode(sentences [][]string) (*tensor.Tensor[float32, B], []int64) {
	inputs := []*tensor.Tensor[int32, B]{
		batch.Words(sentences, m.words, tokenizer.PadID, m.backend),
		batch.Chars(sentences, m.chars, m.cfg.MaxWordLen, tokenizer.PadID, m.backend),
	}
	return m.encoder.Forward(inputs), m.encoder.Lengths(inputs).Data()
}

// Metadata describes the model so a checkpoint can rebuild it.
func (m *sentenceEncoder) Metadata() (map[string]string, error) {
	meta := make(map[string]string, 3)
	for key, value := range map[string]any{
		metaConfig: m.cfg,
		metaWords:  m.words.Tokens(),
		metaChars:  m.chars.Tokens(),
	} {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		meta[key] = string(data)
	}
	return meta, nil
}

// configFromMetadata is the inverse of Metadata.
func configFromMetadata(meta map[string]string) (modelConfig, *tokenizer.Vocab, *tokenizer.Vocab, error) {
	var cfg modelConfig
	var wordTokens, charTokens []string
	for key, target := range map[string]any{
		metaConfig: &cfg,
		metaWords:  &wordTokens,
		metaChars:  &charTokens,
	} {
		value, ok := meta[key]
		if !ok {
			return cfg, nil, nil, fmt.Errorf("checkpoint metadata is missing %q", key)
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return cfg, nil, nil, fmt.Errorf("checkpoint metadata %q: %w", key, err)
		}
	}

	words, err := tokenizer.FromTokens(wordTokens)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("word vocabulary: %w", err)
	}
	chars, err := tokenizer.FromTokens(charTokens)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("char vocabulary: %w", err)
	}
	return cfg, words, chars, nil
}
