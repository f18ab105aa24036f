package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// Config хранит конфигурацию для ParseService.
type Config struct {
	// PoolSize — количество одновременных воркеров классификации и извлечения.
	PoolSize int
	// SampleSize — число символов от начала текста, по которому определяется формат.
	SampleSize int
}

// Option — функциональная опция для настройки ParseService.
type Option func(*ParseService)

// WithPoolSize устанавливает количество одновременных воркеров.
func WithPoolSize(n int) Option {
	return func(s *ParseService) {
		if n > 0 {
			s.config.PoolSize = n
		}
	}
}

// WithSampleSize устанавливает размер образца для определения формата.
func WithSampleSize(n int) Option {
	return func(s *ParseService) {
		if n > 0 {
			s.config.SampleSize = n
		}
	}
}

// WithLogger устанавливает логгер для сервиса.
func WithLogger(l *slog.Logger) Option {
	return func(s *ParseService) {
		if l != nil {
			s.log = l
		}
	}
}

// ParseService выполняет полный конвейер разбора: определение формата,
// сегментацию, классификацию, извлечение полей и постобработку.
// Сервис не хранит состояние между вызовами и безопасен для одновременного использования.
type ParseService struct {
	res    *resources.Set
	config Config
	log    *slog.Logger
}

// NewParseService создает новый ParseService с использованием функциональных опций.
func NewParseService(res *resources.Set, opts ...Option) *ParseService {
	s := &ParseService{
		res: res,
		config: Config{
			PoolSize:   4,
			SampleSize: DefaultSampleSize,
		},
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// segmentResult — вспомогательная структура для передачи результатов от воркеров.
type segmentResult struct {
	index  int
	record domain.MessageRecord
	err    error
}

// Detect определяет платформу и язык текста с учетом явных значений в опциях.
func (s *ParseService) Detect(text string, opts domain.Options) (*domain.Detection, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.StageError{Stage: domain.StageOptions, Err: err}
	}
	return resolveFormat(text, opts, s.res.Indicators, s.config.SampleSize)
}

// Parse разбирает декодированный текст экспорта в таблицу сообщений.
// Ошибки определения формата и опций фатальны. Блоки с некорректной меткой
// времени отбрасываются и попадают в диагностику.
func (s *ParseService) Parse(ctx context.Context, text string, opts domain.Options) (*domain.ParseResult, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.StageError{Stage: domain.StageOptions, Err: err}
	}

	det, err := resolveFormat(text, opts, s.res.Indicators, s.config.SampleSize)
	if err != nil {
		s.log.WarnContext(ctx, "Format detection failed", "error", err)
		return nil, err
	}
	ind, err := s.res.Indicators.Lookup(det.Language, det.Platform)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageDetectLanguage, Err: err}
	}

	diag := &domain.Diagnostics{Platform: det.Platform, Language: det.Language}
	log := s.log.With("platform", det.Platform, "language", det.Language)

	segments, preamble := SegmentText(text, det.Platform, opts.NewlinePlaceholder)
	diag.PreambleLength = preamble
	diag.Segments = len(segments)
	log.InfoContext(ctx, "Text segmented", "segments", len(segments), "preamble_bytes", preamble)

	records, err := s.processSegments(ctx, log, segments, ind, opts, diag)
	if err != nil {
		return nil, err
	}

	table := s.postprocess(ctx, log, records, ind, opts, diag)
	if table.Len() == 0 {
		diag.Warnings = append(diag.Warnings, domain.ErrEmptyResult)
		log.WarnContext(ctx, "Таблица пуста после обработки", "segments", len(segments))
	}

	log.InfoContext(ctx, "Parse finished",
		"rows", table.Len(),
		"malformed", diag.MalformedCount(),
		"pruned", diag.Pruned,
		"removed_by_consent", diag.RemovedByConsent,
	)
	return &domain.ParseResult{Table: table, Diagnostics: diag}, nil
}

// processSegments классифицирует блоки и извлекает поля в пуле воркеров.
// Результаты собираются по индексу блока, поэтому порядок строк детерминирован.
func (s *ParseService) processSegments(
	ctx context.Context,
	log *slog.Logger,
	segments []Segment,
	ind *resources.Indicators,
	opts domain.Options,
	diag *domain.Diagnostics,
) ([]domain.MessageRecord, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.StageError{Stage: domain.StageExtract, Err: fmt.Errorf("parse interrupted: %w", err)}
	}

	classifier := NewClassifier(ind, opts)
	if order := DetectSlashDateOrder(segments, ind.SlashDateOrder); order != ind.SlashDateOrder {
		log.InfoContext(ctx, "Slash date order differs from language default", "order", order, "default", ind.SlashDateOrder)
		classifier = classifier.WithSlashDateOrder(order)
	}
	extractor := NewExtractor(ind, s.res, opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poolSize := min(s.config.PoolSize, len(segments))
	tasks := make(chan Segment, len(segments))
	results := make(chan segmentResult, len(segments))
	var wg sync.WaitGroup

	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, classifier, extractor, tasks, results)
	}

	for _, seg := range segments {
		tasks <- seg
	}
	close(tasks)

	slots := make([]*segmentResult, len(segments))
	for finished := 0; finished < len(segments); finished++ {
		select {
		case res := <-results:
			slots[res.index] = &res
		case <-ctx.Done():
			wg.Wait()
			return nil, &domain.StageError{Stage: domain.StageExtract, Err: fmt.Errorf("parse interrupted: %w", ctx.Err())}
		}
	}
	wg.Wait()
	close(results)

	records := make([]domain.MessageRecord, 0, len(segments))
	for _, res := range slots {
		var malformed *domain.MalformedTimestampError
		switch {
		case res.err == nil:
			records = append(records, res.record)
		case errors.As(res.err, &malformed):
			diag.Malformed = append(diag.Malformed, domain.MalformedRecord{
				Index:  malformed.Index,
				Prefix: malformed.Prefix,
				Reason: malformed.Reason,
			})
			log.DebugContext(ctx, "Dropping block with malformed timestamp", "index", malformed.Index, "reason", malformed.Reason)
		default:
			return nil, &domain.StageError{Stage: domain.StageClassify, Err: res.err}
		}
	}

	if n := diag.MalformedCount(); n > 0 {
		log.InfoContext(ctx, "Блоки с некорректной меткой времени отброшены", "count", n)
	}
	return records, nil
}

func (s *ParseService) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	classifier *Classifier,
	extractor *Extractor,
	tasks <-chan Segment,
	results chan<- segmentResult,
) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			// Глобальный контекст завершен, выходим.
			return
		case seg, ok := <-tasks:
			if !ok {
				// Канал задач закрыт, больше работы нет.
				return
			}

			rec, err := classifier.Classify(seg)
			if err == nil {
				extractor.Extract(&rec)
			}
			results <- segmentResult{index: seg.Index, record: rec, err: err}
		}
	}
}

// postprocess применяет к строкам, в этом порядке, прореживание, фильтр согласия,
// анонимизацию и колонки порядка.
func (s *ParseService) postprocess(
	ctx context.Context,
	log *slog.Logger,
	records []domain.MessageRecord,
	ind *resources.Indicators,
	opts domain.Options,
	diag *domain.Diagnostics,
) *domain.ChatTable {
	records, diag.Pruned = Prune(records, opts.AnonMode == domain.AnonAdd)
	if diag.Pruned > 0 {
		log.DebugContext(ctx, "Pruned parse artifacts", "count", diag.Pruned)
	}

	records, diag.RemovedByConsent = FilterConsent(records, opts.ConsentText)
	if opts.ConsentText != nil {
		log.InfoContext(ctx, "Consent filter applied", "removed", diag.RemovedByConsent)
	}

	table := &domain.ChatTable{Records: records}
	if p := NewAnonymizer(ind, opts.AnonymizeMentions).Apply(table, opts.AnonMode); p != nil {
		log.InfoContext(ctx, "Participants anonymized", "mode", opts.AnonMode, "pseudonyms", p.Len())
	}

	ApplyOrder(table, opts.Order)
	return table
}
