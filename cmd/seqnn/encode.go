package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/seqnn/backend/cpu"
	"github.com/born-ml/seqnn/internal/batch"
	"github.com/born-ml/seqnn/internal/envconfig"
	internalnn "github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/serialization"
	"github.com/born-ml/seqnn/internal/tokenizer"
	"github.com/born-ml/seqnn/nn"
	"github.com/born-ml/seqnn/tensor"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var errNoInput = errors.New("no input sentences")

type encodeOptions struct {
	model      modelConfig
	seed       int64
	tokenizer  string
	checkpoint string
	save       string
	half       bool
}

func newEncodeCmd() *cobra.Command {
	opts := encodeOptions{
		model: modelConfig{
			WordDim:     50,
			CharDim:     16,
			Filters:     internalnn.DefaultNumFilters,
			FilterWidth: internalnn.DefaultFilterWidth,
			Window:      1,
			Hidden:      64,
		},
	}

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode one sentence per line and summarise the encodings",
		Long: `Reads one sentence per line from file (or stdin), embeds words and
characters, widens every step with a context window and runs a two-layer
bidirectional LSTM over the batch. Prints one row per sentence.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEncode(cmd, path, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.model.Hidden, "hidden", opts.model.Hidden, "LSTM hidden size per direction")
	flags.IntVar(&opts.model.WordDim, "word-dim", opts.model.WordDim, "word embedding size")
	flags.IntVar(&opts.model.CharDim, "char-dim", opts.model.CharDim, "character embedding size")
	flags.IntVar(&opts.model.Filters, "filters", opts.model.Filters, "character CNN filters")
	flags.IntVar(&opts.model.FilterWidth, "filter-width", opts.model.FilterWidth, "character CNN filter width")
	flags.IntVar(&opts.model.MaxWordLen, "max-word-len", 0, "truncate words to this many characters (0 = longest word)")
	flags.IntVar(&opts.model.Window, "window", opts.model.Window, "context window half-width")
	flags.Int64Var(&opts.seed, "seed", envconfig.Seed(), "weight initialization seed")
	flags.StringVar(&opts.tokenizer, "tokenizer", envconfig.Tokenizer(), "whitespace, whitespace-lower or a tiktoken encoding")
	flags.StringVar(&opts.checkpoint, "checkpoint", "", "load weights and vocabularies from a safetensors file")
	flags.StringVar(&opts.save, "save", "", "write weights and vocabularies to a safetensors file")
	flags.BoolVar(&opts.half, "half", false, "store float weights as F16 when saving")

	return cmd
}

func runEncode(cmd *cobra.Command, path string, opts encodeOptions) error {
	in, closeInput, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer closeInput()

	tok, err := tokenizer.New(opts.tokenizer)
	if err != nil {
		return err
	}
	sentences, err := readSentences(in, tok)
	if err != nil {
		return err
	}
	slog.Debug("read input", "sentences", len(sentences), "tokenizer", tok.Name())

	backend := cpu.NewWithWorkers(int(envconfig.NumThreads())) //nolint:gosec // G115: thread counts are small
	nn.Seed(opts.seed)

	model, err := buildModel(sentences, opts, backend)
	if err != nil {
		return err
	}

	start := time.Now()
	out, lengths := model.Encode(sentences)
	slog.Debug("encoded batch", "shape", fmt.Sprint(out.Shape()), "elapsed", time.Since(start))

	if err := renderEncodings(cmd.OutOrStdout(), sentences, out, lengths); err != nil {
		return err
	}

	if opts.save != "" {
		return saveModel(model, opts.save, opts.half)
	}
	return nil
}

func buildModel(sentences [][]string, opts encodeOptions, backend B) (*sentenceEncoder, error) {
	if opts.checkpoint == "" {
		words := tokenizer.Build(flatten(sentences), 1)
		chars := tokenizer.Build(batch.CharTokens(sentences), 1)
		if err := validateConfig(opts.model); err != nil {
			return nil, err
		}
		return newSentenceEncoder(opts.model, words, chars, backend), nil
	}

	dict, meta, err := serialization.ReadSafeTensors(opts.checkpoint)
	if err != nil {
		return nil, err
	}
	cfg, words, chars, err := configFromMetadata(meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.checkpoint, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.checkpoint, err)
	}

	model := newSentenceEncoder(cfg, words, chars, backend)
	if err := nn.LoadStateDict[B](model.encoder, dict); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.checkpoint, err)
	}
	slog.Info("loaded checkpoint", "path", opts.checkpoint, "tensors", len(dict), "words", words.Len(), "chars", chars.Len())
	return model, nil
}

func validateConfig(cfg modelConfig) error {
	switch {
	case cfg.WordDim <= 0, cfg.CharDim <= 0, cfg.Filters <= 0, cfg.FilterWidth <= 0, cfg.Hidden <= 0:
		return fmt.Errorf("model sizes must be positive: %+v", cfg)
	case cfg.Window < 0:
		return fmt.Errorf("window must be >= 0, got %d", cfg.Window)
	case cfg.MaxWordLen < 0:
		return fmt.Errorf("max word length must be >= 0, got %d", cfg.MaxWordLen)
	}
	return nil
}

func saveModel(model *sentenceEncoder, path string, half bool) error {
	meta, err := model.Metadata()
	if err != nil {
		return err
	}

	var opts []serialization.WriterOption
	if half {
		opts = append(opts, serialization.WithHalfPrecision())
	}
	dict := nn.StateDict[B](model.encoder)
	if err := serialization.WriteSafeTensors(path, dict, meta, opts...); err != nil {
		return err
	}
	slog.Info("saved checkpoint", "path", path, "tensors", len(dict), "half", half)
	return nil
}

// readSentences tokenizes every non-blank line.
func readSentences(r io.Reader, tok tokenizer.Tokenizer) ([][]string, error) {
	var sentences [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens, err := tok.Tokenize(line)
		if err != nil {
			return nil, err
		}
		if len(tokens) > 0 {
			sentences = append(sentences, tokens)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(sentences) == 0 {
		return nil, errNoInput
	}
	return sentences, nil
}

func flatten(sentences [][]string) []string {
	var out []string
	for _, s := range sentences {
		out = append(out, s...)
	}
	return out
}

// renderEncodings prints, per sentence, its length and the L2 norm of its
// encodings over the real steps.
func renderEncodings(w io.Writer, sentences [][]string, out *tensor.Tensor[float32, B], lengths []int64) error {
	features := out.Size(2)
	data := out.Data()
	seq := out.Size(1)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "LENGTH", "NORM", "SENTENCE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)

	for i, sentence := range sentences {
		row := data[i*seq*features : (i*seq+int(lengths[i]))*features]
		var sum float64
		for _, v := range row {
			sum += float64(v) * float64(v)
		}
		table.Append([]string{
			strconv.Itoa(i),
			strconv.FormatInt(lengths[i], 10),
			strconv.FormatFloat(math.Sqrt(sum), 'f', 4, 64),
			preview(sentence, 48),
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "\noutput shape %v\n", out.Shape())
	return err
}

func preview(tokens []string, limit int) string {
	s := strings.Join(tokens, " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-3]) + "..."
	}
	return s
}
