// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_config"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_model/markerdata"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/mpresenter/console"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/message"
)

const appName = "mu_rigmarker"

// Version はビルド時に埋め込むバージョン。
var Version = "dev"

// main はマーカーデータからのリグ生成CLIを実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app はコマンド間で共有する実行状態を保持する。
type app struct {
	out      io.Writer
	errOut   io.Writer
	printer  *message.Printer
	settings model.RigSettings
	logger   *logging.Logger
	usecase  *minteractor.MarkerUsecase
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	a := &app{
		out:     out,
		errOut:  errOut,
		printer: messages.NewPrinter(""),
	}
	return a.command().Run(context.Background(), append([]string{appName}, args...))
}

// command はルートコマンドを組み立てる。
func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      appName,
		Usage:     messages.HelpAppUsage,
		Version:   Version,
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: messages.HelpFlagConfig},
			&cli.BoolFlag{Name: "verbose", Usage: messages.HelpFlagVerbose},
			&cli.BoolFlag{Name: "no-color", Usage: messages.HelpFlagNoColor},
			&cli.StringFlag{Name: "lang", Value: "ja", Usage: messages.HelpFlagLang},
		},
		Before: a.configure,
		Commands: []*cli.Command{
			a.buildCommand(),
			a.inspectCommand(),
			a.mirrorDataCommand(),
		},
	}
}

// configure は色、表示言語、設定、ロガーを初期化する。
func (a *app) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("no-color") {
		console.DisableColors()
	}
	a.printer = messages.NewPrinter(cmd.String("lang"))

	cfg, err := io_config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return ctx, err
	}
	opts, err := cfg.LoggerOptions()
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		opts.Level = logging.LOG_LEVEL_DEBUG
	}
	opts.Output = a.errOut
	a.logger = logging.NewLogger(opts)
	logging.SetDefaultLogger(a.logger)
	a.settings = settings

	repository := markerdata.NewMarkerDataRepository()
	repository.SetLoadProgressReporter(func(event markerdata.LoadProgressEvent) {
		a.logger.Debug("読み込み進捗: %s", event.Type)
	})
	a.usecase = minteractor.NewMarkerUsecase(minteractor.MarkerUsecaseDeps{
		DataReader: repository,
		DataWriter: repository,
		NewScene: func() moutput.IScene {
			return scene.NewScene()
		},
	})
	return ctx, nil
}

// buildCommand はリグとスケルトンを生成するコマンドを返す。
func (a *app) buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     messages.HelpBuildUsage,
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: messages.HelpFlagOut},
			&cli.BoolFlag{Name: "mirror", Aliases: []string{"m"}, Usage: messages.HelpFlagMirror},
			&cli.BoolFlag{Name: "no-skeleton", Usage: messages.HelpFlagNoSkeleton},
			&cli.StringFlag{Name: "parent", Usage: messages.HelpFlagParent},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			inputPath, err := a.inputPath(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, console.StatusPending(a.printer.Sprintf(messages.MessageLoadStart, inputPath)))

			settings := a.settings
			result, err := a.usecase.Convert(minteractor.ConvertRequest{
				InputPath:        inputPath,
				OutputPath:       cmd.String("out"),
				Settings:         &settings,
				Mirror:           cmd.Bool("mirror"),
				SkipSkeleton:     cmd.Bool("no-skeleton"),
				SkeletonParent:   cmd.String("parent"),
				ProgressReporter: console.NewProgressPrinter(a.out, a.printer),
			})
			if err != nil {
				fmt.Fprintln(a.errOut, console.StatusError(a.printer.Sprintf(messages.MessageBuildFailed)))
				a.logger.With(logging.Path(inputPath), logging.Err(err)).Error("リグ生成に失敗しました")
				return err
			}

			if result.OutputPath != "" && result.Skeleton != nil {
				fmt.Fprintln(a.out, console.StatusSuccess(a.printer.Sprintf(messages.MessageSaveComplete, result.OutputPath)))
			}
			fmt.Fprintln(a.out, console.StatusSuccess(a.printer.Sprintf(messages.MessageBuildComplete, len(result.Systems))))
			console.PrintWarnings(a.out, a.printer, result.Warnings)
			return nil
		},
	}
}

// inspectCommand はマーカーデータのシステム構成を表示するコマンドを返す。
func (a *app) inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     messages.HelpInspectUsage,
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mirror", Aliases: []string{"m"}, Usage: messages.HelpFlagMirror},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			inputPath, err := a.inputPath(cmd)
			if err != nil {
				return err
			}
			settings := a.settings
			result, err := a.usecase.PrepareRig(minteractor.ConvertRequest{
				InputPath:    inputPath,
				Settings:     &settings,
				Mirror:       cmd.Bool("mirror"),
				SkipSkeleton: true,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, console.RenderSummary(a.printer, minteractor.Summarize(result.Context)))
			console.PrintWarnings(a.out, a.printer, result.Warnings)
			return nil
		},
	}
}

// mirrorDataCommand は左右システムを反転したマーカーデータを書き出すコマンドを返す。
func (a *app) mirrorDataCommand() *cli.Command {
	return &cli.Command{
		Name:      "mirror-data",
		Usage:     messages.HelpMirrorDataUsage,
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: messages.HelpFlagOut},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			inputPath, err := a.inputPath(cmd)
			if err != nil {
				return err
			}
			data, err := a.usecase.LoadRigData(nil, inputPath)
			if err != nil {
				return err
			}
			mirrored := minteractor.MirrorRigData(data)

			outputPath := strings.TrimSpace(cmd.String("out"))
			if outputPath == "" {
				outputPath = mirrorOutputPath(inputPath)
			}
			if err := a.usecase.SaveData(nil, outputPath, mirrored); err != nil {
				return err
			}
			fmt.Fprintln(a.out, console.StatusSuccess(
				a.printer.Sprintf(messages.MessageMirrorDataDone, outputPath, len(mirrored.Systems))))
			return nil
		},
	}
}

// inputPath は位置引数から入力パスを取り出す。
func (a *app) inputPath(cmd *cli.Command) (string, error) {
	path := strings.TrimSpace(cmd.Args().First())
	if path == "" {
		return "", errors.New(a.printer.Sprintf(messages.MessageInputRequired))
	}
	return path, nil
}

// mirrorOutputPath は入力と同じフォルダに _mirror を付けた出力パスを返す。
func mirrorOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return filepath.Join(filepath.Dir(inputPath), base+"_mirror"+ext)
}
