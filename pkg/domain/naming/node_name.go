// 指示: miu200521358
// Package naming は part_desc_num_side_ext 形式のノード命名規約を提供する。
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// SIDE_L は左側トークン。
	SIDE_L = "L"
	// SIDE_R は右側トークン。
	SIDE_R = "R"
	// SIDE_M は中央トークン。
	SIDE_M = "M"

	// mainDesc は省略扱いになる説明トークン。
	mainDesc = "main"
	// separator はトークン区切り文字。
	separator = "_"
)

// validSides は有効な側トークン一覧。
var validSides = []string{SIDE_L, SIDE_R, SIDE_M}

// invalidTokenChars はトークンから除去する文字。
var invalidTokenChars = regexp.MustCompile(`[^a-zA-Z0-9{}]`)

// NodeName は命名規約に従ったノード名を表す。
type NodeName struct {
	Part   string
	Desc   string
	Num    int
	HasNum bool
	Side   string
	Ext    string
}

// New はトークンからノード名を生成する。num が負の場合は番号なしとする。
func New(part string, desc string, num int, side string, ext string) (NodeName, error) {
	return normalize(NodeName{Part: part, Desc: desc, Num: num, HasNum: num >= 0, Side: side, Ext: ext})
}

// Parse は名前文字列をトークンへ分解する。
func Parse(name string) (NodeName, error) {
	clean := CleanName(name)
	tokens := strings.Split(clean, separator)
	n := NodeName{}
	switch len(tokens) {
	case 2:
		n.Part, n.Ext = tokens[0], tokens[1]
	case 3:
		switch {
		case isDigits(tokens[1]):
			n.Part, n.Ext = tokens[0], tokens[2]
			n.Num, n.HasNum = atoi(tokens[1]), true
		case isSide(tokens[1]):
			n.Part, n.Side, n.Ext = tokens[0], tokens[1], tokens[2]
		default:
			n.Part, n.Desc, n.Ext = tokens[0], tokens[1], tokens[2]
		}
	case 4:
		switch {
		case isDigits(tokens[1]):
			n.Part, n.Side, n.Ext = tokens[0], tokens[2], tokens[3]
			n.Num, n.HasNum = atoi(tokens[1]), true
		case isSide(tokens[2]):
			n.Part, n.Desc, n.Side, n.Ext = tokens[0], tokens[1], tokens[2], tokens[3]
		default:
			n.Part, n.Desc, n.Ext = tokens[0], tokens[1], tokens[3]
			if !isDigits(tokens[2]) {
				return NodeName{}, fmt.Errorf("番号トークンが不正です: %s", name)
			}
			n.Num, n.HasNum = atoi(tokens[2]), true
		}
	case 5:
		if !isDigits(tokens[2]) {
			return NodeName{}, fmt.Errorf("番号トークンが不正です: %s", name)
		}
		n.Part, n.Desc, n.Side, n.Ext = tokens[0], tokens[1], tokens[3], tokens[4]
		n.Num, n.HasNum = atoi(tokens[2]), true
	default:
		return NodeName{}, fmt.Errorf("トークン数は2以上5以下である必要があります: %s", name)
	}
	return normalize(n)
}

// MustParse は Parse の失敗時に panic する。定数名の初期化用。
func MustParse(name string) NodeName {
	n, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return n
}

// IsValid は名前が命名規約に従っているか判定する。
func IsValid(name string) bool {
	_, err := Parse(name)
	return err == nil
}

// CleanName は階層区切りと名前空間を除いた名前を返す。
func CleanName(name string) string {
	if idx := strings.LastIndex(name, "|"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// String は規約に従った名前文字列を返す。
func (n NodeName) String() string {
	var b strings.Builder
	b.WriteString(n.Part)
	b.WriteString(separator)
	if n.Desc != "" {
		b.WriteString(n.Desc)
		b.WriteString(separator)
	}
	if n.HasNum {
		b.WriteString(fmt.Sprintf("%02d", n.Num))
		b.WriteString(separator)
	}
	if n.Side != "" {
		b.WriteString(n.Side)
		b.WriteString(separator)
	}
	b.WriteString(n.Ext)
	return b.String()
}

// WithExt は拡張子トークンを差し替えた名前を返す。
func (n NodeName) WithExt(ext string) NodeName {
	out := n
	out.Ext = sanitizeToken(ext)
	if out.Ext == "" {
		out.Ext = n.Ext
	}
	return out
}

// WithSide は側トークンを差し替えた名前を返す。
func (n NodeName) WithSide(side string) NodeName {
	out := n
	if token, err := sanitizeSide(side); err == nil {
		out.Side = token
	}
	return out
}

// WithoutNum は番号トークンを除いた名前を返す。
func (n NodeName) WithoutNum() NodeName {
	out := n
	out.Num, out.HasNum = 0, false
	return out
}

// IsLeft は左側か判定する。
func (n NodeName) IsLeft() bool {
	return n.Side == SIDE_L
}

// IsRight は右側か判定する。
func (n NodeName) IsRight() bool {
	return n.Side == SIDE_R
}

// IsMiddle は中央か判定する。
func (n NodeName) IsMiddle() bool {
	return n.Side == SIDE_M
}

// Flip は左右を入れ替えた名前を返す。中央や側なしはそのまま返す。
func (n NodeName) Flip() NodeName {
	out := n
	switch n.Side {
	case SIDE_L:
		out.Side = SIDE_R
	case SIDE_R:
		out.Side = SIDE_L
	}
	return out
}

// FlipName は名前文字列の左右を入れ替える。規約外の名前はそのまま返す。
func FlipName(name string) string {
	n, err := Parse(name)
	if err != nil {
		return name
	}
	return n.Flip().String()
}

// ReplaceExt は名前文字列の拡張子を差し替える。
func ReplaceExt(name string, ext string) (string, error) {
	n, err := Parse(name)
	if err != nil {
		return "", err
	}
	return n.WithExt(ext).String(), nil
}

// normalize は各トークンを整形し検証する。
func normalize(n NodeName) (NodeName, error) {
	out := n
	out.Part = sanitizeToken(n.Part)
	if out.Part == "" {
		return NodeName{}, fmt.Errorf("part トークンが空です: %q", n.Part)
	}
	out.Desc = sanitizeToken(n.Desc)
	if strings.EqualFold(out.Desc, mainDesc) {
		out.Desc = ""
	}
	side, err := sanitizeSide(n.Side)
	if err != nil {
		return NodeName{}, err
	}
	out.Side = side
	out.Ext = sanitizeToken(n.Ext)
	if out.Ext == "" {
		return NodeName{}, fmt.Errorf("ext トークンが空です: %q", n.Ext)
	}
	if !out.HasNum {
		out.Num = 0
	}
	return out, nil
}

// sanitizeToken は英数字と波括弧以外を除去する。
func sanitizeToken(token string) string {
	return invalidTokenChars.ReplaceAllString(token, "")
}

// sanitizeSide は側トークンを検証する。
func sanitizeSide(token string) (string, error) {
	token = sanitizeToken(token)
	if token == "" {
		return "", nil
	}
	for _, side := range validSides {
		if strings.EqualFold(token, side) {
			return side, nil
		}
	}
	return "", fmt.Errorf("側トークンが不正です: %s", token)
}

// isSide は側トークンか判定する。
func isSide(token string) bool {
	for _, side := range validSides {
		if strings.EqualFold(token, side) {
			return true
		}
	}
	return false
}

// isDigits は数字のみか判定する。
func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// atoi は数字トークンを整数へ変換する。
func atoi(token string) int {
	v, _ := strconv.Atoi(token)
	return v
}
