package main

import (
	"flag"
	"strings"
)

// interactiveArgs 是聊天组件入口的参数。
type interactiveArgs struct {
	cfgPath         string
	apiURL          string
	prompt          string
	noMarkdown      bool
	configOverrides stringSlice
	copyableOutput  bool
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.insurabot/config.toml)")
	fs.StringVar(&args.apiURL, "url", "", "Chat endpoint override (default http://localhost:8000/chat)")
	fs.StringVar(&args.prompt, "prompt", "", "Message to send on start")
	fs.BoolVar(&args.noMarkdown, "no-markdown", false, "Render agent replies as plain text")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.copyableOutput, "copyable-output", false, "Disable alt screen to allow mouse selection/copy")

	return fs, args
}

func (i *interactiveArgs) finalizePrompt(fs *flag.FlagSet) {
	if i.prompt == "" && fs.NArg() > 0 {
		i.prompt = strings.Join(fs.Args(), " ")
	}
}
