package cli

import (
	"flag"
	"io"
	"os"
	"strings"

	"figmamcp/internal/config"
)

// discardValue accepts any value. It lets a copy of a FlagSet parse the
// command line without touching the real flag values.
type discardValue struct{ isBool bool }

func (v discardValue) String() string   { return "" }
func (v discardValue) Set(string) error { return nil }
func (v discardValue) IsBoolFlag() bool { return v.isBool }

// ExplicitFlags reports which flags of fs appear on the command line in
// args, as opposed to being filled in from the environment or a config
// file. Parsing stops at the first subcommand.
func ExplicitFlags(fs *flag.FlagSet, args []string) map[string]bool {
	shadow := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	shadow.SetOutput(io.Discard)
	fs.VisitAll(func(f *flag.Flag) {
		b, ok := f.Value.(interface{ IsBoolFlag() bool })
		shadow.Var(discardValue{isBool: ok && b.IsBoolFlag()}, f.Name, f.Usage)
	})
	_ = shadow.Parse(args)

	explicit := map[string]bool{}
	shadow.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	return explicit
}

// FlagKeySource tells where the --figma-api-key value came from: the
// command line, FIGMA_MCP_FIGMA_API_KEY, or the config file. It returns
// SourceNone when the flag holds no key.
func FlagKeySource(fs *flag.FlagSet, args []string, getenv func(string) string) config.Source {
	f := fs.Lookup(config.FlagAPIKey)
	if f == nil || strings.TrimSpace(f.Value.String()) == "" {
		return config.SourceNone
	}
	if ExplicitFlags(fs, args)[config.FlagAPIKey] {
		return config.SourceFlag
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.TrimSpace(getenv(config.EnvFlagAPIKey)) != "" {
		return config.SourceEnv
	}
	return config.SourceConfigFile
}
