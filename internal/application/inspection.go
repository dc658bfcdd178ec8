package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/grading"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/logger"
)

// BatteryPolicy что возвращать в поле battery_health.
type BatteryPolicy int

const (
	BatteryEcho BatteryPolicy = iota // значение из запроса
	BatteryZero                      // всегда 0
)

// ParseBatteryPolicy разбирает имя политики: echo или zero.
func ParseBatteryPolicy(name string) (BatteryPolicy, error) {
	switch name {
	case "", "echo":
		return BatteryEcho, nil
	case "zero":
		return BatteryZero, nil
	default:
		return BatteryEcho, fmt.Errorf("%w: unknown battery health policy %q", entity.ErrConfig, name)
	}
}

// InspectionRequest снимки по ракурсам и заявленное здоровье батареи.
type InspectionRequest struct {
	Images        map[string][]byte
	BatteryHealth int
}

// InspectionOptions настройки оркестратора.
type InspectionOptions struct {
	ParallelViews bool
	Battery       BatteryPolicy
	Report        grading.ReportOptions
}

type InspectionService struct {
	adapter   port.DetectionAdapter
	codec     port.ImageCodec
	renderer  port.Renderer
	repo      port.InspectionRepository
	publisher port.ResultPublisher
	opts      InspectionOptions
	logger    *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewInspectionService создаёт оркестратор осмотра. repo и publisher необязательны.
func NewInspectionService(
	adapter port.DetectionAdapter,
	codec port.ImageCodec,
	renderer port.Renderer,
	repo port.InspectionRepository,
	publisher port.ResultPublisher,
	opts InspectionOptions,
	log *logger.Logger,
) *InspectionService {
	if log == nil {
		log = logger.Discard()
	}
	return &InspectionService{
		adapter:   adapter,
		codec:     codec,
		renderer:  renderer,
		repo:      repo,
		publisher: publisher,
		opts:      opts,
		logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ModelLoaded сообщает, готов ли детектор.
func (s *InspectionService) ModelLoaded() bool {
	return s.adapter != nil && s.adapter.Loaded()
}

type viewInput struct {
	view entity.View
	img  image.Image
}

type viewOutput struct {
	detections []entity.Detection
	visualized []byte
	err        error
}

// Inspect проводит осмотр: детекция по ракурсам, классификация, оценка, отчёт и разметка.
func (s *InspectionService) Inspect(ctx context.Context, req InspectionRequest) (*entity.InspectionResult, error) {
	if s.adapter == nil {
		return nil, errors.New("detector is not configured")
	}

	inputs, err := s.decodeViews(req.Images)
	if err != nil {
		return nil, err
	}

	outputs := s.runViews(ctx, inputs)

	// Слияние строго в порядке front, back
	var damages []entity.Damage
	detections := make(map[entity.View][]entity.Detection, len(inputs))
	visualized := make(map[entity.View][]byte, len(inputs))
	for i, in := range inputs {
		out := outputs[i]
		if out.err != nil {
			return nil, out.err
		}
		detections[in.view] = out.detections
		visualized[in.view] = out.visualized
		damages = append(damages, s.classifyView(in.view, out.detections)...)
	}
	if damages == nil {
		damages = []entity.Damage{}
	}

	grade, score := grading.Grade(damages)
	report, err := grading.Compose(damages, grade, s.opts.Report)
	if err != nil {
		return nil, err
	}

	battery := req.BatteryHealth
	if s.opts.Battery == BatteryZero {
		battery = 0
	}

	result := &entity.InspectionResult{
		ID:            s.newID(),
		Grade:         grade,
		DamageScore:   score,
		Damages:       damages,
		Report:        report,
		BatteryHealth: battery,
		Detections:    detections,
		Visualized:    visualized,
		CreatedAt:     s.now().UTC(),
	}

	s.logger.Info("inspection %s: %d damage(s), score=%.2f, grade=%s", result.ID, len(damages), score, grade)
	s.store(ctx, result)

	return result, nil
}

// decodeViews оставляет только front и back и декодирует их в порядке обхода.
func (s *InspectionService) decodeViews(images map[string][]byte) ([]viewInput, error) {
	byView := make(map[entity.View][]byte, len(images))
	var ignored []string
	for key, data := range images {
		view, ok := entity.ParseView(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		byView[view] = data
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		s.logger.Info("ignoring unsupported views: %v", ignored)
	}

	var inputs []viewInput
	for _, view := range entity.InspectedViews {
		data, ok := byView[view]
		if !ok {
			continue
		}
		img, err := s.codec.Decode(data)
		if err != nil {
			if errors.Is(err, entity.ErrDecode) {
				return nil, fmt.Errorf("%s image: %w", view, err)
			}
			return nil, fmt.Errorf("%s image: %w: %v", view, entity.ErrDecode, err)
		}
		inputs = append(inputs, viewInput{view: view, img: img})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no front or back image provided", entity.ErrInvalidInput)
	}
	return inputs, nil
}

// runViews запускает детекцию и разметку по ракурсам. Результат i соответствует inputs[i].
func (s *InspectionService) runViews(ctx context.Context, inputs []viewInput) []viewOutput {
	outputs := make([]viewOutput, len(inputs))

	if !s.opts.ParallelViews || len(inputs) < 2 {
		for i, in := range inputs {
			outputs[i] = s.processView(ctx, in)
		}
		return outputs
	}

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in viewInput) {
			defer wg.Done()
			outputs[i] = s.processView(ctx, in)
		}(i, in)
	}
	wg.Wait()

	return outputs
}

func (s *InspectionService) processView(ctx context.Context, in viewInput) viewOutput {
	detections, err := s.adapter.Detect(ctx, in.view, in.img)
	if err != nil {
		return viewOutput{err: err}
	}

	rendered := s.renderer.Render(in.img, detections)
	encoded, err := s.codec.Encode(rendered)
	if err != nil {
		return viewOutput{err: fmt.Errorf("encode %s visualization: %w", in.view, err)}
	}

	return viewOutput{detections: detections, visualized: encoded}
}

// classifyView переводит срабатывания ракурса в повреждения; степень none отбрасывается.
func (s *InspectionService) classifyView(view entity.View, detections []entity.Detection) []entity.Damage {
	count := len(detections)
	damages := make([]entity.Damage, 0, count)
	for _, d := range detections {
		severity := grading.Classify(count, d.Confidence, d.ClassLabel)
		s.logger.Info("%s: %s conf=%.3f count=%d -> %s", view, d.ClassLabel, d.Confidence, count, severity)
		if severity == entity.SeverityNone {
			continue
		}
		damages = append(damages, entity.Damage{
			Type:     d.ClassLabel,
			Location: entity.DamageLocation(view, d.BBox),
			Severity: severity,
		})
	}
	return damages
}

// store сохраняет и рассылает результат. Ошибки только логируются.
func (s *InspectionService) store(ctx context.Context, result *entity.InspectionResult) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, result); err != nil {
			s.logger.Warning("inspection %s: save failed: %v", result.ID, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			s.logger.Warning("inspection %s: publish failed: %v", result.ID, err)
		}
	}
}

// History последние осмотры из хранилища.
func (s *InspectionService) History(ctx context.Context, limit int) ([]*entity.InspectionResult, error) {
	if s.repo == nil {
		return []*entity.InspectionResult{}, nil
	}
	return s.repo.List(ctx, limit)
}

// Find осмотр по ID или entity.ErrNotFound.
func (s *InspectionService) Find(ctx context.Context, id string) (*entity.InspectionResult, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("inspection %s: %w", id, entity.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}
