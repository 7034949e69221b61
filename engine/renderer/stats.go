package renderer

import "fmt"

// Stats counts the work of the last rendered frame.
type Stats struct {
	DrawCalls        int
	ProgramBinds     int
	UniformUploads   int
	SkippedUploads   int
	MaterialReuses   int
	TextureBinds     int
	Compositions     int
	ShadowPasses     int
	MirrorRenders    int
	CubeFaces        int
	PostPasses       int
	CulledVisuals    int
	SolidVisuals     int
	TransparentUnits int
}

func (s Stats) String() string {
	return fmt.Sprintf("draws=%d programs=%d uploads=%d skipped=%d reused=%d textures=%d compositions=%d shadows=%d mirrors=%d cube-faces=%d post=%d",
		s.DrawCalls, s.ProgramBinds, s.UniformUploads, s.SkippedUploads, s.MaterialReuses, s.TextureBinds,
		s.Compositions, s.ShadowPasses, s.MirrorRenders, s.CubeFaces, s.PostPasses)
}
