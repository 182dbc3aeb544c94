// 指示: miu200521358
package messages

import (
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// english は英語表示の翻訳表。
var english = map[string]string{
	HelpAppUsage:        "build rig joints from marker data",
	HelpBuildUsage:      "create marker systems and a skeleton from marker data",
	HelpInspectUsage:    "show the marker systems described by marker data",
	HelpMirrorDataUsage: "write marker data with left/right systems mirrored",
	HelpFlagConfig:      "config file path (TOML)",
	HelpFlagOut:         "output file path (.yaml/.yml/.toml)",
	HelpFlagMirror:      "create mirrored twins of left/right systems",
	HelpFlagNoSkeleton:  "do not build the skeleton",
	HelpFlagParent:      "parent node of the root joints",
	HelpFlagVerbose:     "enable debug logging",
	HelpFlagNoColor:     "disable colored output",
	HelpFlagLang:        "display language (ja/en)",

	LabelSystem:      "System",
	LabelSide:        "Side",
	LabelChains:      "Chains",
	LabelMarkers:     "Markers",
	LabelLeafs:       "Leafs",
	LabelParent:      "Parent marker",
	LabelConnectMode: "Connect mode",

	MessageInputRequired:  "specify the input marker data",
	MessageLoadStart:      "loading: %s",
	MessageSystemCreated:  "system created: %s (%d markers)",
	MessageConnected:      "systems connected: %d systems",
	MessageMirrored:       "mirrored: %d systems",
	MessageSkeletonBuilt:  "skeleton built: %d joints",
	MessageSaveComplete:   "saved: %s",
	MessageBuildComplete:  "rig built: %d systems",
	MessageBuildFailed:    "rig build failed",
	MessageWarningSummary: "%d warnings",
	MessageMirrorDataDone: "mirrored data saved: %s (%d systems)",

	WarningNotMarker:           "parent candidate is not a marker",
	WarningSameSystem:          "parent candidate belongs to the same system",
	WarningNonLeafMode:         "parent marker is not a leaf, connect mode set to none",
	WarningAimModeRotation:     "parent marker rotation does not fit the aim connect mode",
	WarningParentJointMissing:  "parent marker joint not found",
	WarningMirrorTargetMissing: "mirror target node not found",
	WarningMirrorParentMissing: "mirrored parent marker not found",
}

// warningKeys は警告IDと表示キーの対応表。
var warningKeys = map[string]string{
	model.MarkerWarningNotMarker:           WarningNotMarker,
	model.MarkerWarningSameSystem:          WarningSameSystem,
	model.MarkerWarningNonLeafMode:         WarningNonLeafMode,
	model.MarkerWarningAimModeRotation:     WarningAimModeRotation,
	model.MarkerWarningParentJointMissing:  WarningParentJointMissing,
	model.MarkerWarningMirrorTargetMissing: WarningMirrorTargetMissing,
	model.MarkerWarningMirrorParentMissing: WarningMirrorParentMissing,
}

func init() {
	for key, text := range english {
		_ = message.SetString(language.Japanese, key, key)
		_ = message.SetString(language.English, key, text)
	}
}

// Keys は翻訳表に登録されたキー一覧を返す。
func Keys() []string {
	keys := make([]string, 0, len(english))
	for key := range english {
		keys = append(keys, key)
	}
	return keys
}

// NewPrinter は言語名に対応する表示用プリンタを返す。未知の言語は日本語にする。
func NewPrinter(lang string) *message.Printer {
	tag := language.Japanese
	if parsed, err := language.Parse(strings.TrimSpace(lang)); err == nil {
		base, _ := parsed.Base()
		if enBase, _ := language.English.Base(); base == enBase {
			tag = language.English
		}
	}
	return message.NewPrinter(tag)
}

// WarningKey は警告IDの表示キーを返す。
func WarningKey(id string) (string, bool) {
	key, ok := warningKeys[id]
	return key, ok
}
