package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/template"

	"github.com/alecthomas/kong"
	"github.com/xor-shift/prng/config"
	"github.com/xor-shift/prng/util/rng"
)

var errNegativeCount = errors.New("sample count must not be negative")

type args struct {
	Count              int    `name:"count" short:"n" default:"1000" help:"Number of samples to draw"`
	Seed0              string `name:"seed0" help:"First seed word (defaults to PRNG_SEED0 or 125)"`
	Seed1              string `name:"seed1" help:"Second seed word (defaults to PRNG_SEED1 or 234523)"`
	State              string `name:"state" help:"Start from a 32 hex digit state instead of a seed"`
	Out                string `name:"out" short:"o" default:"samples_{{.Seed0}}_{{.Seed1}}_{{.Count}}.csv" help:"File to output to (templated), - for stdout"`
	Format             string `name:"format" short:"f" enum:"csv,json" default:"csv" help:"Data format"`
	Raw                bool   `name:"raw" negatable:"" default:"true" help:"Whether to include the raw 64-bit outputs"`
	ExportColumnTitles bool   `name:"export_column_titles" negatable:"" default:"true" help:"(applicable only to CSV outputs) whether to include column titles for CSV exports"`
}

type row struct {
	Index uint64  `json:"index"`
	Raw   *string `json:"raw,omitempty"`
	Value float64 `json:"value"`
}

func (a *args) generator() (*rng.Xoroshiro128PState, error) {
	if a.State != "" {
		return rng.ParseXoroshiro128P(a.State)
	}

	env := map[string]string{}
	for key, v := range map[string]string{"PRNG_SEED0": a.Seed0, "PRNG_SEED1": a.Seed1} {
		if v == "" {
			v = os.Getenv(key)
		}
		env[key] = v
	}

	cfg, err := config.Decode(env)
	if err != nil {
		return nil, err
	}

	return cfg.NewGenerator()
}

func (a *args) outFileName(gen *rng.Xoroshiro128PState) (string, error) {
	outFileNameTemplate, err := template.New("").Parse(a.Out)
	if err != nil {
		return "", fmt.Errorf("error while creating the output filename template: %w", err)
	}

	outFileNameBuf := bytes.Buffer{}

	templateArguments := struct {
		Seed0 uint64
		Seed1 uint64
		Count int
	}{
		Seed0: gen.State[0],
		Seed1: gen.State[1],
		Count: a.Count,
	}

	if err = outFileNameTemplate.Execute(&outFileNameBuf, templateArguments); err != nil {
		return "", fmt.Errorf("error while executing the output filename template: %w", err)
	}

	return outFileNameBuf.String(), nil
}

func draw(gen *rng.Xoroshiro128PState, count int, withRaw bool) []row {
	rows := make([]row, count)

	if !withRaw {
		for i, v := range gen.Sample(count) {
			rows[i] = row{Index: uint64(i), Value: v}
		}
		return rows
	}

	for i := range rows {
		raw := gen.Next()
		rawString := strconv.FormatUint(raw, 10)
		rows[i] = row{Index: uint64(i), Raw: &rawString, Value: rng.ToFloat(raw)}
	}

	return rows
}

func writeCSV(w io.Writer, rows []row, withRaw, titles bool) error {
	csvWriter := csv.NewWriter(w)

	if titles {
		columns := []string{"Index"}
		if withRaw {
			columns = append(columns, "Raw")
		}
		columns = append(columns, "Value")

		if err := csvWriter.Write(columns); err != nil {
			return err
		}
	}

	for _, r := range rows {
		rowStrings := []string{strconv.FormatUint(r.Index, 10)}
		if withRaw {
			rowStrings = append(rowStrings, *r.Raw)
		}
		rowStrings = append(rowStrings, strconv.FormatFloat(r.Value, 'g', -1, 64))

		if err := csvWriter.Write(rowStrings); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func writeJSON(w io.Writer, rows []row) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func run(a *args, stdout io.Writer) error {
	if a.Count < 0 {
		return fmt.Errorf("%w (got %d)", errNegativeCount, a.Count)
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}

	outFileName, err := a.outFileName(gen)
	if err != nil {
		return err
	}

	rows := draw(gen, a.Count, a.Raw)

	out := stdout
	if outFileName != "-" {
		var outFile *os.File
		if outFile, err = os.Create(outFileName); err != nil {
			return fmt.Errorf("error while creating the output file \"%s\": %w", outFileName, err)
		}
		defer outFile.Close()
		out = outFile
	}

	if a.Format == "json" {
		err = writeJSON(out, rows)
	} else {
		err = writeCSV(out, rows, a.Raw, a.ExportColumnTitles)
	}
	if err != nil {
		return err
	}

	log.Printf("wrote %d samples to %s, final state %s", len(rows), outFileName, gen)

	return nil
}

func main() {
	if _, err := config.Load(); err != nil {
		log.Fatalf("loading config failed: %s", err)
	}

	var a args
	_ = kong.Parse(&a)

	if err := run(&a, os.Stdout); err != nil {
		log.Fatalln(err)
	}
}
