// Command fxinfo prints the parameter tables of the built-in effects and,
// optionally, impulse response metrics of an effect chain.
//
// Usage:
//
//	fxinfo [flags] [effect-type ...]
//
// Without arguments it prints the parameters of every registered effect.
//
// Examples:
//
//	fxinfo delay
//	fxinfo -list
//	fxinfo -rate 44100 -chain '[{"type":"echo","params":{"feedback":0.7}}]'
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/effectchain"
	"github.com/cwbudde/algo-afx/measure/response"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 1024, "block size in frames")
	list := flag.Bool("list", false, "list available effect types")
	chain := flag.String("chain", "", "JSON chain description to measure")
	seconds := flag.Float64("length", 2, "impulse response length in seconds for -chain")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxinfo [flags] [effect-type ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints effect parameter tables and chain impulse response metrics.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fxinfo delay echo\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -list\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -chain '[{\"type\":\"echo\",\"params\":{\"feedback\":0.7}}]'\n")
	}
	flag.Parse()

	reg := effectchain.DefaultRegistry()
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(*rate), core.WithBlockSize(*block))

	if *list {
		printList(os.Stdout, reg)
		return
	}

	if *chain != "" {
		if err := printChainMetrics(os.Stdout, cfg, reg, *chain, *seconds); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	types := flag.Args()
	if len(types) == 0 {
		types = reg.Types()
	}

	if err := printParameters(os.Stdout, cfg, reg, types); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printList(w io.Writer, reg *effectchain.Registry) {
	for _, t := range reg.Types() {
		fmt.Fprintln(w, t)
	}
}

func printParameters(w io.Writer, cfg core.ProcessorConfig, reg *effectchain.Registry, types []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Effect\tParameter\tKind\tMin\tMax\tDefault\tUnit\n")
	fmt.Fprintf(tw, "------\t---------\t----\t---\t---\t-------\t----\n")

	for _, typ := range types {
		typ = strings.ToLower(strings.TrimSpace(typ))
		fx, err := reg.New(typ, cfg)
		if err != nil {
			return err
		}

		for _, s := range fx.Parameters().Specs() {
			lo, hi := fmt.Sprintf("%g", s.Min), fmt.Sprintf("%g", s.Max)
			if len(s.Options) > 0 {
				lo, hi = s.Options[0], s.Options[len(s.Options)-1]
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				typ, s.Name, s.Kind, lo, hi, s.Label(s.Default), s.Unit)
		}
	}

	return tw.Flush()
}

func printChainMetrics(w io.Writer, cfg core.ProcessorConfig, reg *effectchain.Registry, raw string, seconds float64) error {
	specs, err := effectchain.ParseSpecs([]byte(raw))
	if err != nil {
		return err
	}

	chain, err := effectchain.Build(cfg, reg, specs...)
	if err != nil {
		return err
	}

	a := response.NewAnalyzer(cfg)
	h, err := a.Impulse(chain, max(1, int(seconds*cfg.SampleRate)))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Stages\t%d\n", chain.Len())
	fmt.Fprintf(tw, "Peak\t%.2f ms\n", 1000*float64(response.PeakIndex(h))/cfg.SampleRate)
	fmt.Fprintf(tw, "Energy\t%.6f\n", response.Energy(h))
	if n := response.DecayLength(h, 1e-3); n >= 0 {
		fmt.Fprintf(tw, "Decay to -60 dBFS\t%.2f ms\n", 1000*float64(n)/cfg.SampleRate)
	} else {
		fmt.Fprintf(tw, "Decay to -60 dBFS\t> %.2f s\n", seconds)
	}
	if rt, err := a.DecayTime(h); err == nil {
		fmt.Fprintf(tw, "Decay time (T30)\t%.3f s\n", rt)
	}

	return tw.Flush()
}
