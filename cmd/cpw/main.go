package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/cpw"
	"oss.terrastruct.com/cpw/cpwroute"
	"oss.terrastruct.com/cpw/lib/log"
	"oss.terrastruct.com/cpw/lib/version"
	"oss.terrastruct.com/cpw/lib/xmain"
)

func main() {
	xmain.Main(run)
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.Stderr(ctx)

	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	unitsFlag := ms.Opts.String("CPW_UNITS", "units", "u", "um", "design unit for bare dimension strings (nm, um, mm or m).")

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	if ms.Opts.Flags.Arg(0) == "version" {
		if len(ms.Opts.Flags.Args()) > 1 {
			return xmain.UsageErrorf("version subcommand accepts no arguments")
		}
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}

	var inputPath, outputPath string
	switch len(ms.Opts.Flags.Args()) {
	case 0:
		help(ms)
		return nil
	case 1:
		inputPath = ms.Opts.Flags.Arg(0)
		if inputPath == "-" {
			outputPath = "-"
		} else {
			outputPath = renameExt(inputPath, ".routed.json")
		}
	case 2:
		inputPath = ms.Opts.Flags.Arg(0)
		outputPath = ms.Opts.Flags.Arg(1)
	default:
		return xmain.UsageErrorf("too many arguments passed")
	}

	parse, err := unitParser(*unitsFlag)
	if err != nil {
		return err
	}

	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	var doc cpw.Document
	err = json.Unmarshal(input, &doc)
	if err != nil {
		return fmt.Errorf("failed to parse %v: %w", inputPath, err)
	}

	ctx, cancel := log.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	res, err := cpw.RouteAll(ctx, &doc, &cpw.RouteOptions{Parse: parse})
	if err != nil {
		return err
	}

	err = ms.WritePath(outputPath, xjson.Marshal(res))
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully routed %d interconnects from %v to %v", len(res.Routes), inputPath, outputPath)
	return nil
}

// designUnits is ordered longest suffix first so that "m" cannot shadow
// the others when trimming.
var designUnits = []struct {
	suffix string
	meters float64
}{
	{"nm", 1e-9},
	{"um", 1e-6},
	{"mm", 1e-3},
	{"m", 1},
}

// unitParser returns a cpwroute.UnitParser that reads bare numbers in the
// base unit and suffixed dimension strings like "250 um" or "1.2 mm" in
// whatever unit the suffix names.
func unitParser(base string) (cpwroute.UnitParser, error) {
	var baseMeters float64
	for _, u := range designUnits {
		if u.suffix == base {
			baseMeters = u.meters
		}
	}
	if baseMeters == 0 {
		return nil, xmain.UsageErrorf("unknown design unit %q: want nm, um, mm or m", base)
	}
	return func(s string) (float64, error) {
		t := strings.TrimSpace(s)
		for _, u := range designUnits {
			if !strings.HasSuffix(t, u.suffix) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(t, u.suffix)), 64)
			if err != nil {
				return 0, err
			}
			return v * u.meters / baseMeters, nil
		}
		return strconv.ParseFloat(t, 64)
	}, nil
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
