package cmd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fzft/go-resp/deps/hredis"
	"github.com/fzft/go-resp/deps/linenoise"
	"github.com/fzft/go-resp/resp"
)

var (
	RespCliHisFileEnv     = "RESPCLI_HISTFILE"
	RespCliHisFileDefault = ".respcli_history"
)

// hints offered by tab completion in the repl
var cliHints = []string{
	"PING", "ECHO", "SET", "GET", "DEL", "EXISTS", "INCR", "HELLO",
	"connect", "clear", "quit", "exit",
}

type CliConnInfo struct {
	hostIp   string
	hostPort int
}

type RespCliCfg struct {
	connInfo CliConnInfo
	timeout  time.Duration
	repeat   int
	interval time.Duration
	prompt   string
	output   OutputMode
}

type RespCli struct {
	config  *RespCliCfg
	context *hredis.RedisContext
	out     io.Writer
}

var cliCfg = RespCliCfg{}

func init() {
	flags := CliCmd.Flags()
	flags.StringVarP(&cliCfg.connInfo.hostIp, "host", "H", "127.0.0.1", "Server hostname")
	flags.IntVarP(&cliCfg.connInfo.hostPort, "port", "p", 6380, "Server port")
	flags.DurationVarP(&cliCfg.timeout, "timeout", "t", 5*time.Second, "Connect and reply timeout")
	flags.IntVarP(&cliCfg.repeat, "repeat", "r", 1, "Execute the command N times")
	flags.DurationVarP(&cliCfg.interval, "interval", "i", 0, "Wait this long between repeated commands")
}

var CliCmd = &cobra.Command{
	Use:   "cli [cmd [arg [arg ...]]]",
	Short: "Talk to a RESP server",
	Long: `Talk to a RESP server

With arguments the command is sent once (or --repeat times) and the reply
printed. Without arguments an interactive prompt is started.

Usage
	respctl cli -p 6380 SET key value
	respctl cli --json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cliCfg
		cfg.output = outputMode(rawOutput, noRawOutput, jsonOutput)
		cli := &RespCli{config: &cfg, out: cmd.OutOrStdout()}
		defer cli.close()

		if len(args) > 0 {
			if err := cli.connect(); err != nil {
				return err
			}
			return cli.issueCommandRepeat(args, cfg.repeat)
		}
		if err := cli.connect(); err != nil {
			fmt.Fprintf(os.Stderr, "Could not connect to %s: %s\n", cli.addr(), err)
		}
		return cli.repl()
	},
}

func (cli *RespCli) addr() string {
	return net.JoinHostPort(cli.config.connInfo.hostIp, strconv.Itoa(cli.config.connInfo.hostPort))
}

// connect drops any current connection and dials the configured server.
func (cli *RespCli) connect() error {
	cli.close()
	ctx, err := hredis.RedisConnect(cli.addr(), cli.config.timeout)
	if err != nil {
		return err
	}
	cli.context = ctx
	cli.refreshPrompt()
	return nil
}

func (cli *RespCli) close() {
	if cli.context != nil {
		_ = cli.context.Close()
		cli.context = nil
	}
}

func (cli *RespCli) refreshPrompt() {
	cli.config.prompt = fmt.Sprintf("%s> ", cli.addr())
}

func (cli *RespCli) issueCommandRepeat(argv []string, repeat int) error {
	for i := 0; i < repeat; i++ {
		if cli.context == nil {
			if err := cli.connect(); err != nil {
				return err
			}
		}
		if err := cli.issueCommand(argv); err != nil {
			// a broken connection is retried once before giving up
			if cli.context.Err == hredis.RedisErrEOF || cli.context.Err == hredis.RedisErrIo {
				if cerr := cli.connect(); cerr == nil {
					err = cli.issueCommand(argv)
				}
			}
			if err != nil {
				cli.close()
				return err
			}
		}
		if cli.config.interval > 0 && i+1 < repeat {
			time.Sleep(cli.config.interval)
		}
	}
	return nil
}

func (cli *RespCli) issueCommand(argv []string) error {
	reply, err := cli.context.Do(argv...)
	if err != nil {
		return err
	}
	return cli.printReply(reply)
}

func (cli *RespCli) printReply(reply resp.Frame) error {
	out, err := formatReply(reply, cli.config.output)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, out)
	return err
}

func (cli *RespCli) repl() error {
	var historyFile string

	line := linenoise.New()
	defer line.Close()
	line.SetHints(cliHints)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		historyFile = getDotfilePath(RespCliHisFileEnv, RespCliHisFileDefault)
		if historyFile != "" {
			if err := line.HistoryLoad(historyFile); err != nil {
				fmt.Fprintf(os.Stderr, "Could not load history: %s\n", err)
			}
		}
	}

	cli.refreshPrompt()
	for {
		prompt := cli.config.prompt
		if cli.context == nil {
			prompt = "not connected> "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, linenoise.ErrAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		argv, err := splitArgs(input)
		if historyFile != "" && strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
			_ = line.HistorySave(historyFile)
		}
		if err != nil {
			fmt.Fprintln(cli.out, err)
			continue
		}
		if len(argv) == 0 {
			continue
		}

		// a leading number repeats the command
		repeat := 1
		if n, err := strconv.Atoi(argv[0]); err == nil && len(argv) > 1 {
			if n <= 0 {
				fmt.Fprintln(cli.out, "Invalid respctl repeat command option value.")
				continue
			}
			repeat = n
			argv = argv[1:]
		}

		switch {
		case strings.EqualFold(argv[0], "quit"), strings.EqualFold(argv[0], "exit"):
			return nil
		case len(argv) == 3 && strings.EqualFold(argv[0], "connect"):
			port, err := strconv.Atoi(argv[2])
			if err != nil {
				fmt.Fprintln(cli.out, "Invalid port number")
				continue
			}
			cli.config.connInfo.hostIp = argv[1]
			cli.config.connInfo.hostPort = port
			cli.refreshPrompt()
			if err := cli.connect(); err != nil {
				fmt.Fprintf(cli.out, "Could not connect to %s: %s\n", cli.addr(), err)
			}
		case len(argv) == 1 && strings.EqualFold(argv[0], "clear"):
			_ = line.ClearScreen()
		default:
			start := time.Now()
			if err := cli.issueCommandRepeat(argv, repeat); err != nil {
				fmt.Fprintf(cli.out, "Error: %s\n", err)
				continue
			}
			if elapsed := time.Since(start); elapsed >= 500*time.Millisecond && cli.config.output == OutputStandard {
				fmt.Fprintf(cli.out, "(%.2fs)\n", elapsed.Seconds())
			}
		}
	}
}

func getDotfilePath(envOverride, dotFilename string) string {
	path := os.Getenv(envOverride)
	if path != "" {
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, dotFilename)
}
