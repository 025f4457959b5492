package main

import (
	"fmt"
	"strings"
)

type rootArgs struct {
	overrides []string
}

// parseRootArgs 只消费开头的 -c key=value（也接受 --c 与 -c=key=value），
// 从第一个其他参数起原样返回，交给子命令或交互模式的 FlagSet 解析。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	var overrides []string
	i := 0
	for i < len(args) {
		arg := args[i]
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" || name != "c" {
			break
		}
		if !hasValue {
			if i+1 >= len(args) {
				return rootArgs{}, nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			value = args[i+1]
			i++
		}
		overrides = append(overrides, value)
		i++
	}
	rest := append([]string{}, args[i:]...)
	return rootArgs{overrides: overrides}, rest, nil
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}
