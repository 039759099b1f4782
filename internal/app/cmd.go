package app

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Command はtaskboardバイナリのサブコマンド。
type Command string

const (
	CommandServe       Command = "serve"
	CommandWorker      Command = "worker"
	CommandMigrate     Command = "migrate"
	CommandHealthcheck Command = "healthcheck"
	CommandBoard       Command = "board"
	CommandHelp        Command = "help"
)

// commands は表示順に並べたサブコマンドと説明。
var commands = []struct {
	cmd  Command
	args string
	desc string
}{
	{CommandServe, "", "APIサーバーを起動する（デフォルト）"},
	{CommandWorker, "", "期限切れセッションと孤立タスクを定期削除する"},
	{CommandMigrate, "", "スキーマを最新バージョンまで適用する"},
	{CommandHealthcheck, "", "ローカルのAPIサーバーの/healthを確認する"},
	{CommandBoard, "[mine|<project-id>]", "APIに接続してプロジェクトを端末に表示する"},
	{CommandHelp, "", "この一覧を表示する"},
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 引数なし、または未知の名前はserveとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd
		}
	}
	return CommandServe
}

// needsServerConfig はDATABASE_URLなどサーバー設定の読み込みが必要かを返す。
func (c Command) needsServerConfig() bool {
	switch c {
	case CommandServe, CommandWorker, CommandMigrate:
		return true
	}
	return false
}

// writeUsage はサブコマンドの一覧を書き出す。
func writeUsage(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "usage: taskboard <command> [args]")
	fmt.Fprintln(tw)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.cmd, c.args, c.desc)
	}
	return tw.Flush()
}
