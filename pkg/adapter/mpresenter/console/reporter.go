// 指示: miu200521358
package console

import (
	"fmt"
	"io"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/minteractor"
	"golang.org/x/text/message"
)

// ProgressPrinter はリグ準備処理の進捗を1行ずつ出力する。
type ProgressPrinter struct {
	out     io.Writer
	printer *message.Printer
}

// NewProgressPrinter は進捗出力を生成する。
func NewProgressPrinter(out io.Writer, printer *message.Printer) *ProgressPrinter {
	return &ProgressPrinter{out: out, printer: printer}
}

// ReportPrepareProgress は表示対象の進捗イベントを出力する。
func (p *ProgressPrinter) ReportPrepareProgress(event minteractor.PrepareProgressEvent) {
	if p == nil || p.out == nil {
		return
	}
	var line string
	switch event.Type {
	case minteractor.PrepareProgressEventTypeSystemCreated:
		line = p.printer.Sprintf(messages.MessageSystemCreated, event.SystemName, event.MarkerCount)
	case minteractor.PrepareProgressEventTypeSystemsConnected:
		line = p.printer.Sprintf(messages.MessageConnected, event.SystemCount)
	case minteractor.PrepareProgressEventTypeMirrored:
		line = p.printer.Sprintf(messages.MessageMirrored, event.SystemCount)
	case minteractor.PrepareProgressEventTypeSkeletonBuilt:
		line = p.printer.Sprintf(messages.MessageSkeletonBuilt, event.JointCount)
	default:
		return
	}
	fmt.Fprintln(p.out, StatusSuccess(line))
}

// PrintWarnings は警告件数と各警告を出力する。警告がなければ何も出力しない。
func PrintWarnings(out io.Writer, printer *message.Printer, warnings []minteractor.RigWarning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(out, StatusWarning(printer.Sprintf(messages.MessageWarningSummary, len(warnings))))
	for _, warning := range warnings {
		text := warning.Message
		if key, ok := messages.WarningKey(warning.ID); ok {
			text = printer.Sprintf(key) + ": " + warning.Message
		}
		fmt.Fprintf(out, "  %s\n", Warning(text))
	}
}
