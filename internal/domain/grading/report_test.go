package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
)

func TestCompose_Conditions(t *testing.T) {
	damages := []entity.Damage{
		dmg(entity.DamageLocation(entity.ViewFront, entity.BBox{X2: 5, Y2: 5}), entity.SeverityMinor),
		dmg(entity.DamageLocation(entity.ViewFront, entity.BBox{X2: 7, Y2: 7}), entity.SeverityModerate),
	}

	report, err := Compose(damages, entity.GradeB, ReportOptions{Frame: FramePolicyStub})
	require.NoError(t, err)
	require.Equal(t, "screen: 2 defect(s) detected", report.ScreenCondition)
	require.Equal(t, "back: healthy", report.BackCondition)
	require.Equal(t, "frame: healthy", report.FrameCondition)
	require.Equal(t, "2 defect(s) detected, grade: B", report.Summary)
	require.Equal(t, Assessments[entity.GradeB], report.OverallAssessment)
}

func TestCompose_EmptyIsHealthy(t *testing.T) {
	report, err := Compose(nil, entity.GradeS, ReportOptions{Frame: FramePolicyComputed})
	require.NoError(t, err)
	require.Equal(t, "screen: healthy", report.ScreenCondition)
	require.Equal(t, "back: healthy", report.BackCondition)
	require.Equal(t, "frame: healthy", report.FrameCondition)
	require.Equal(t, "0 defect(s) detected, grade: S", report.Summary)
}

func TestCompose_FramePolicy(t *testing.T) {
	damages := []entity.Damage{dmg("frame - bbox: [0, 0, 1, 1]", entity.SeverityMinor)}

	stub, err := Compose(damages, entity.GradeA, ReportOptions{Frame: FramePolicyStub})
	require.NoError(t, err)
	require.Equal(t, "frame: healthy", stub.FrameCondition)

	computed, err := Compose(damages, entity.GradeA, ReportOptions{Frame: FramePolicyComputed})
	require.NoError(t, err)
	require.Equal(t, "frame: 1 defect(s) detected", computed.FrameCondition)
}

func TestCompose_UnknownGradeFails(t *testing.T) {
	_, err := Compose(nil, entity.Grade(42), ReportOptions{})
	require.ErrorIs(t, err, entity.ErrUnknownGrade)
}

func TestCompose_EveryGradeHasAssessment(t *testing.T) {
	for g := entity.GradeS; g <= entity.GradeD; g++ {
		_, err := Compose(nil, g, ReportOptions{})
		require.NoError(t, err, g.String())
	}
}

func TestParseFramePolicy(t *testing.T) {
	p, err := ParseFramePolicy("Computed")
	require.NoError(t, err)
	require.Equal(t, FramePolicyComputed, p)

	_, err = ParseFramePolicy("guess")
	require.Error(t, err)
}
