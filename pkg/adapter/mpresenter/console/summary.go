// 指示: miu200521358
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/minteractor"
	"golang.org/x/text/message"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// columnGap は表の列間の空白。
const columnGap = "  "

// RenderSummary はシステム概要を表形式の文字列にする。
func RenderSummary(printer *message.Printer, summaries []minteractor.SystemSummary) string {
	header := []string{
		printer.Sprintf(messages.LabelSystem),
		printer.Sprintf(messages.LabelSide),
		printer.Sprintf(messages.LabelChains),
		printer.Sprintf(messages.LabelMarkers),
		printer.Sprintf(messages.LabelLeafs),
		printer.Sprintf(messages.LabelParent),
		printer.Sprintf(messages.LabelConnectMode),
	}
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		parent := summary.ParentMarker
		mode := summary.ConnectMode.String()
		if parent == "" {
			parent = SymbolSkipped
			mode = SymbolSkipped
		}
		rows = append(rows, []string{
			summary.Name,
			summary.Side,
			fmt.Sprint(summary.ChainCount),
			fmt.Sprint(summary.MarkerCount),
			fmt.Sprint(summary.LeafCount),
			parent,
			mode,
		})
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(paint(headerStyle, joinRow(header, widths)))
	b.WriteString("\n")
	for _, row := range rows {
		cells := padCells(row, widths)
		if row[5] == SymbolSkipped {
			b.WriteString(strings.Join(cells[:5], columnGap) + columnGap)
			b.WriteString(paint(dimStyle, strings.TrimRight(strings.Join(cells[5:], columnGap), " ")))
		} else {
			b.WriteString(joinRow(row, widths))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// padCells は列幅に合わせて各セルの右側を空白で埋める。
func padCells(cells []string, widths []int) []string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return padded
}

// joinRow は列幅を揃えた1行を作る。末尾の空白は除く。
func joinRow(cells []string, widths []int) string {
	return strings.TrimRight(strings.Join(padCells(cells, widths), columnGap), " ")
}

// paint は色付き出力が有効な時だけスタイルを適用する。
func paint(style lipgloss.Style, s string) string {
	if !IsColorEnabled() {
		return s
	}
	return style.Render(s)
}
