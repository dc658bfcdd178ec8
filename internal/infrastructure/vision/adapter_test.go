package vision

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
)

// scriptedModel отдаёт заранее заданные ответы по порядку вызовов.
type scriptedModel struct {
	responses [][]entity.Detection
	err       error
	calls     []entity.Thresholds
}

func (m *scriptedModel) Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error) {
	m.calls = append(m.calls, th)
	if m.err != nil {
		return nil, m.err
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		return nil, nil
	}
	return m.responses[idx], nil
}

func (m *scriptedModel) Loaded() bool { return true }
func (m *scriptedModel) Close() error { return nil }

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 10, 10))
}

func TestAdapter_TagsViewAndUsesPrimary(t *testing.T) {
	model := &scriptedModel{responses: [][]entity.Detection{
		{{ClassLabel: "scratch", Confidence: 0.4}, {ClassLabel: "oil", Confidence: 0.2}},
	}}
	adapter := NewAdapter(model, DefaultPolicy(), nil)

	dets, err := adapter.Detect(context.Background(), entity.ViewBack, testImage())
	require.NoError(t, err)
	require.Len(t, dets, 2)
	for _, d := range dets {
		require.Equal(t, entity.ViewBack, d.View)
	}
	require.Equal(t, "scratch", dets[0].ClassLabel)
	require.Equal(t, []entity.Thresholds{{Confidence: 0.1, IoU: 0.5}}, model.calls)
}

func TestAdapter_RetryOnEmpty(t *testing.T) {
	model := &scriptedModel{responses: [][]entity.Detection{
		nil,
		{{ClassLabel: "stain", Confidence: 0.07}},
	}}
	adapter := NewAdapter(model, DefaultPolicy(), nil)

	dets, err := adapter.Detect(context.Background(), entity.ViewFront, testImage())
	require.NoError(t, err)
	require.Len(t, dets, 1)
	require.Equal(t, entity.ViewFront, dets[0].View)
	require.Equal(t, []entity.Thresholds{
		{Confidence: 0.1, IoU: 0.5},
		{Confidence: 0.05, IoU: 0.3},
	}, model.calls)
}

func TestAdapter_NoRetryWhenDisabled(t *testing.T) {
	model := &scriptedModel{}
	policy := DefaultPolicy()
	policy.RetryOnEmpty = false
	adapter := NewAdapter(model, policy, nil)

	dets, err := adapter.Detect(context.Background(), entity.ViewFront, testImage())
	require.NoError(t, err)
	require.Empty(t, dets)
	require.Len(t, model.calls, 1)
}

func TestAdapter_WrapsModelError(t *testing.T) {
	cause := errors.New("cuda out of memory")
	adapter := NewAdapter(&scriptedModel{err: cause}, DefaultPolicy(), nil)

	_, err := adapter.Detect(context.Background(), entity.ViewBack, testImage())
	require.ErrorIs(t, err, cause)

	var adapterErr *entity.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	require.Equal(t, entity.ViewBack, adapterErr.View)
}

func TestAdapter_Loaded(t *testing.T) {
	require.True(t, NewAdapter(&scriptedModel{}, DefaultPolicy(), nil).Loaded())
	require.False(t, NewAdapter(nil, DefaultPolicy(), nil).Loaded())
}
