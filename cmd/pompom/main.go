// pompom compresses and decompresses byte streams with a PPM model driven
// by a binary arithmetic coder. It reads from stdin and writes to stdout;
// diagnostics go to stderr, prefixed "pompom: ".
package main

import (
	"fmt"
	"os"

	"github.com/jkataja/pompom/internal/pompom"
	"github.com/urfave/cli/v2"
)

var (
	compressFlag = &cli.BoolFlag{
		Name:  "c",
		Usage: "compress stdin to stdout (default)",
	}
	decompressFlag = &cli.BoolFlag{
		Name:  "d",
		Usage: "decompress stdin to stdout; conflicts with -c",
	}
	orderFlag = &cli.IntFlag{
		Name:  "o",
		Value: pompom.DefaultOrder,
		Usage: fmt.Sprintf("model order, clamped to [%d,%d]", pompom.MinOrder, pompom.MaxOrder),
	}
	memoryFlag = &cli.IntFlag{
		Name:  "m",
		Value: pompom.DefaultMemoryMiB,
		Usage: fmt.Sprintf("memory limit in MiB, clamped to [%d,%d]", pompom.MinMemoryMiB, pompom.MaxMemoryMiB),
	}
	bootstrapFlag = &cli.IntFlag{
		Name:  "b",
		Value: pompom.DefaultBootstrapKiB,
		Usage: fmt.Sprintf("bootstrap buffer in KiB, clamped to [%d,%d]; conflicts with -r", pompom.MinBootstrapKiB, pompom.MaxBootstrapKiB),
	}
	resetOnlyFlag = &cli.BoolFlag{
		Name:  "r",
		Usage: "disable bootstrap (reset-only on table saturation); conflicts with -b",
	}
	adaptFlag = &cli.BoolFlag{
		Name:  "a",
		Usage: "enable fast local adaptation with a default exponent",
	}
	adaptExpFlag = &cli.IntFlag{
		Name:  "A",
		Usage: fmt.Sprintf("enable fast local adaptation with exponent N, clamped to [%d,%d]", pompom.MinAdaptExp, pompom.MaxAdaptExp),
	}
	limitFlag = &cli.Int64Flag{
		Name:  "n",
		Usage: "stop after N plaintext bytes on compress (0 = unlimited)",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "v",
		Usage: "print how many times the context table saturated, on exit",
	}
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "pompom:", r)
			os.Exit(1)
		}
	}()

	app := &cli.App{
		Name:  "pompom",
		Usage: "PPM byte-stream compressor/decompressor",
		Flags: []cli.Flag{
			compressFlag, decompressFlag, orderFlag, memoryFlag, bootstrapFlag,
			resetOnlyFlag, adaptFlag, adaptExpFlag, limitFlag, verboseFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pompom:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool(compressFlag.Name) && ctx.Bool(decompressFlag.Name) {
		return fmt.Errorf("pompom: -c and -d are mutually exclusive")
	}
	if ctx.Bool(resetOnlyFlag.Name) && ctx.IsSet(bootstrapFlag.Name) {
		return fmt.Errorf("pompom: -r and -b are mutually exclusive")
	}
	if ctx.Bool(adaptFlag.Name) && ctx.IsSet(adaptExpFlag.Name) {
		return fmt.Errorf("pompom: -a and -A are mutually exclusive")
	}

	bootstrapKiB := uint8(min(max(ctx.Int(bootstrapFlag.Name), pompom.MinBootstrapKiB), pompom.MaxBootstrapKiB))
	if ctx.Bool(resetOnlyFlag.Name) {
		bootstrapKiB = 0
	}

	adaptExp := uint8(0)
	switch {
	case ctx.IsSet(adaptExpFlag.Name):
		adaptExp = uint8(min(max(ctx.Int(adaptExpFlag.Name), pompom.MinAdaptExp), pompom.MaxAdaptExp))
	case ctx.Bool(adaptFlag.Name):
		adaptExp = pompom.MinAdaptExp
	}

	cfg := pompom.Config{
		Order:        min(max(ctx.Int(orderFlag.Name), pompom.MinOrder), pompom.MaxOrder),
		MemoryMiB:    uint16(min(max(ctx.Int(memoryFlag.Name), pompom.MinMemoryMiB), pompom.MaxMemoryMiB)),
		BootstrapKiB: bootstrapKiB,
		AdaptExp:     adaptExp,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if ctx.Bool(decompressFlag.Name) {
		return doDecompress(ctx, cfg)
	}
	return doCompress(ctx, cfg)
}

func doCompress(ctx *cli.Context, cfg pompom.Config) error {
	result, err := pompom.Compress(os.Stdin, os.Stdout, cfg, pompom.Limit(ctx.Int64(limitFlag.Name)))
	if err != nil {
		return err
	}

	bpc := 0.0
	if result.InBytes > 0 {
		bpc = float64(result.OutBytes) * 8 / float64(result.InBytes)
	}
	fmt.Fprintf(os.Stderr, "pompom: in %d -> out %d at %.3f bpc\n", result.InBytes, result.OutBytes, bpc)
	if ctx.Bool(verboseFlag.Name) {
		fmt.Fprintf(os.Stderr, "pompom: table saturated %d time(s)\n", result.Saturated)
	}
	return nil
}

func doDecompress(ctx *cli.Context, _ pompom.Config) error {
	result, err := pompom.Decompress(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if ctx.Bool(verboseFlag.Name) {
		fmt.Fprintf(os.Stderr, "pompom: out %d bytes, table saturated %d time(s)\n", result.OutBytes, result.Saturated)
	}
	return nil
}
