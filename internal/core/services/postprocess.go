package services

import (
	"sort"

	"whatsapp-chat-parser/internal/domain"
)

// Prune удаляет строки, у которых отсутствует больше PruneThreshold полей.
// В режиме AnonAdd колонка Anonymous учитывается: псевдоним получит каждый
// непустой отправитель, поэтому она отсутствует только вместе с Sender.
func Prune(records []domain.MessageRecord, withAnonymous bool) ([]domain.MessageRecord, int) {
	kept := records[:0]
	pruned := 0
	for _, r := range records {
		missing := r.MissingFieldCount(false)
		if withAnonymous && r.Sender == "" {
			missing++
		}
		if missing > domain.PruneThreshold {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	return kept, pruned
}

// FilterConsent оставляет только строки отправителей, которые хотя бы раз
// написали текст согласия дословно, и служебные строки мессенджера.
// consent == nil отключает фильтр.
func FilterConsent(records []domain.MessageRecord, consent *string) ([]domain.MessageRecord, int) {
	if consent == nil {
		return records, 0
	}

	consented := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		if !r.IsSystem() && r.RawMessage != nil && *r.RawMessage == *consent {
			consented[r.Sender] = struct{}{}
		}
	}

	kept := records[:0]
	removed := 0
	for _, r := range records {
		if _, ok := consented[r.Sender]; !ok && !r.IsSystem() {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}

// ApplyOrder заполняет колонки порядка и при необходимости сортирует строки.
//   - time: устойчивая сортировка по времени, TimeOrder = 1..N;
//   - original: DisplayOrder = 1..N в порядке документа;
//   - both: обе колонки без изменения порядка строк.
func ApplyOrder(table *domain.ChatTable, order domain.Order) {
	records := table.Records
	switch order {
	case domain.OrderTime:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp.Before(records[j].Timestamp)
		})
		for i := range records {
			records[i].TimeOrder = i + 1
		}
		table.HasTimeOrder = true

	case domain.OrderOriginal:
		for i := range records {
			records[i].DisplayOrder = i + 1
		}
		table.HasDisplayOrder = true

	case domain.OrderBoth:
		idx := make([]int, len(records))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return records[idx[a]].Timestamp.Before(records[idx[b]].Timestamp)
		})
		for rank, i := range idx {
			records[i].TimeOrder = rank + 1
		}
		for i := range records {
			records[i].DisplayOrder = i + 1
		}
		table.HasTimeOrder = true
		table.HasDisplayOrder = true
	}
}
