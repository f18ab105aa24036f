package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/domain"
)

func anonTable() *domain.ChatTable {
	return &domain.ChatTable{Records: []domain.MessageRecord{
		message("Alice", "Hi Bob", 0),
		systemRecord(domain.EventMemberAdded, "Alice added Bob and Carol", 1),
		message("Bob", "Hey", 2),
		systemRecord(domain.EventMemberAdded, "You added Dave, Erin and Frank", 3),
	}}
}

func TestAnonymizer_BuildPseudonyms(t *testing.T) {
	ind := indicatorsFor(t, domain.LanguageEnglish, domain.PlatformAndroid)

	t.Run("отправители в порядке появления, затем упомянутые", func(t *testing.T) {
		p := NewAnonymizer(ind, true).BuildPseudonyms(anonTable().Records)
		assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}, p.Names())

		v, ok := p.Lookup("Carol")
		require.True(t, ok)
		assert.Equal(t, "Person_3", v)

		_, ok = p.Lookup("You")
		assert.False(t, ok)
	})

	t.Run("взаимная однозначность", func(t *testing.T) {
		p := NewAnonymizer(ind, true).BuildPseudonyms(anonTable().Records)
		seen := make(map[string]string)
		for _, name := range p.Names() {
			v, _ := p.Lookup(name)
			prev, dup := seen[v]
			assert.False(t, dup, "%s assigned to %s and %s", v, prev, name)
			seen[v] = name
		}
		assert.Len(t, seen, p.Len())
	})

	t.Run("без упоминаний только отправители", func(t *testing.T) {
		p := NewAnonymizer(ind, false).BuildPseudonyms(anonTable().Records)
		assert.Equal(t, []string{"Alice", "Bob"}, p.Names())
	})
}

func TestAnonymizer_Apply(t *testing.T) {
	ind := indicatorsFor(t, domain.LanguageEnglish, domain.PlatformAndroid)

	t.Run("off ничего не меняет", func(t *testing.T) {
		table := anonTable()
		assert.Nil(t, NewAnonymizer(ind, true).Apply(table, domain.AnonOff))
		assert.Equal(t, "Alice", table.Records[0].Sender)
		assert.False(t, table.HasAnonymous)
		assert.Equal(t, "Alice added Bob and Carol", table.Records[1].SystemEvent.Text)
	})

	t.Run("replace заменяет отправителей и имена в служебных строках", func(t *testing.T) {
		table := anonTable()
		p := NewAnonymizer(ind, true).Apply(table, domain.AnonReplace)
		require.NotNil(t, p)

		assert.Equal(t, "Person_1", table.Records[0].Sender)
		assert.Equal(t, domain.SystemSender, table.Records[1].Sender)
		assert.Equal(t, "Person_1 added Person_2 and Person_3", table.Records[1].SystemEvent.Text)
		assert.Equal(t, "Person_2", table.Records[2].Sender)
		assert.Equal(t, "You added Person_4, Person_5 and Person_6", table.Records[3].SystemEvent.Text)
		assert.False(t, table.HasAnonymous)
	})

	t.Run("add добавляет колонку и сохраняет имена", func(t *testing.T) {
		table := anonTable()
		NewAnonymizer(ind, true).Apply(table, domain.AnonAdd)

		assert.True(t, table.HasAnonymous)
		assert.Equal(t, "Alice", table.Records[0].Sender)
		assert.Equal(t, "Person_1", table.Records[0].Anonymous)
		assert.Equal(t, domain.SystemSender, table.Records[1].Anonymous)
		assert.Contains(t, table.Columns(), domain.ColumnAnonymous)
	})

	t.Run("более длинные имена заменяются первыми", func(t *testing.T) {
		table := &domain.ChatTable{Records: []domain.MessageRecord{
			message("Ann", "hi", 0),
			message("Anna", "hello", 1),
			systemRecord(domain.EventMemberAdded, "Anna added Ann", 2),
		}}
		NewAnonymizer(ind, true).Apply(table, domain.AnonReplace)
		assert.Equal(t, "Person_2 added Person_1", table.Records[2].SystemEvent.Text)
	})

	t.Run("псевдоним не подставляется повторно", func(t *testing.T) {
		table := &domain.ChatTable{Records: []domain.MessageRecord{
			message("Person_2", "hi", 0),
			message("Bob", "hello", 1),
			systemRecord(domain.EventMemberRemoved, "Person_2 removed Bob", 2),
		}}
		NewAnonymizer(ind, true).Apply(table, domain.AnonReplace)
		assert.Equal(t, "Person_1 removed Person_2", table.Records[2].SystemEvent.Text)
	})

	t.Run("участник с именем system получает псевдоним", func(t *testing.T) {
		table := &domain.ChatTable{Records: []domain.MessageRecord{
			message(domain.SystemSender, "hello", 0),
			message("Alice", "hi", 1),
			systemRecord(domain.EventMemberLeft, "Bob left", 2),
		}}
		p := NewAnonymizer(ind, false).Apply(table, domain.AnonReplace)

		assert.Equal(t, []string{domain.SystemSender, "Alice"}, p.Names())
		assert.Equal(t, "Person_1", table.Records[0].Sender)
		assert.Equal(t, "Person_2", table.Records[1].Sender)
		assert.Equal(t, domain.SystemSender, table.Records[2].Sender)
	})
}
