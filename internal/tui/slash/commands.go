package slash

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Command 表示内置斜杠命令的标识符。
type Command string

const (
	CommandClear  Command = "clear"
	CommandCopy   Command = "copy"
	CommandStatus Command = "status"
	CommandHelp   Command = "help"
	CommandQuit   Command = "quit"
	CommandExit   Command = "exit"
)

// Item 描述一条内置命令。
type Item struct {
	Command     Command
	Description string
}

// Token 返回带斜杠的命令文本。
func (i Item) Token() string {
	return "/" + string(i.Command)
}

// Builtins 返回内置命令，顺序即帮助中的展示顺序。
func Builtins() []Item {
	return []Item{
		{Command: CommandClear, Description: "start over with only the greeting"},
		{Command: CommandCopy, Description: "copy the last reply to the clipboard"},
		{Command: CommandStatus, Description: "show the chat endpoint and state"},
		{Command: CommandHelp, Description: "toggle the shortcut help"},
		{Command: CommandQuit, Description: "leave InsuraBot"},
	}
}

// IsCommand 判断输入是否为斜杠命令。
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Parse 拆分命令与参数；未知命令返回 ok=false。
func Parse(input string) (Command, []string, bool) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name := Command(strings.ToLower(strings.TrimPrefix(fields[0], "/")))
	if name == CommandExit {
		name = CommandQuit
	}
	for _, item := range Builtins() {
		if item.Command == name {
			return name, fields[1:], true
		}
	}
	return name, fields[1:], false
}

// Suggest 对部分输入做模糊匹配，返回按得分排序的候选。
func Suggest(input string) []Item {
	items := Builtins()
	query := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if query == "" {
		return items
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, string(item.Command))
	}
	results := fuzzy.Find(query, keys)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	out := make([]Item, 0, len(results))
	for _, res := range results {
		out = append(out, items[res.Index])
	}
	return out
}
