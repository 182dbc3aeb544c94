// 指示: miu200521358
package model

// JointData は書き出すリグジョイント1本を表す。
type JointData struct {
	Name        string    `yaml:"name" toml:"name"`
	Parent      string    `yaml:"parent,omitempty" toml:"parent,omitempty"`
	System      string    `yaml:"system" toml:"system"`
	Marker      string    `yaml:"marker" toml:"marker"`
	ChainID     int       `yaml:"chain_id" toml:"chain_id"`
	MarkerID    int       `yaml:"marker_id" toml:"marker_id"`
	Position    []float64 `yaml:"position" toml:"position"`
	JointOrient []float64 `yaml:"joint_orient" toml:"joint_orient"`
	RotateOrder string    `yaml:"rotate_order" toml:"rotate_order"`
}

// SkeletonData はスケルトン書き出し文書全体を表す。
type SkeletonData struct {
	Joints []JointData `yaml:"joints" toml:"joints"`
}

// JointCount はジョイント数を返す。
func (d *SkeletonData) JointCount() int {
	if d == nil {
		return 0
	}
	return len(d.Joints)
}
