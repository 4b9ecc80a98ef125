package commands

import (
	"encoding/json"
	"io"

	"misisid/lib/scrapers/misis"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderText(out io.Writer, info misis.StudentInfo) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)

	t.AppendRow(table.Row{"ФИО", info.FullName})
	t.AppendRow(table.Row{"Номер зачетки", info.RecordBookNumber})
	t.AppendRow(table.Row{"Форма обучения", info.StudyForm})
	t.AppendRow(table.Row{"Уровень подготовки", info.PreparationLevel})
	if info.Specialization != "" {
		t.AppendRow(table.Row{"Специализация", info.Specialization})
	}
	t.AppendRow(table.Row{"Специальность", info.Specialty})
	t.AppendRow(table.Row{"Факультет", info.Faculty})
	t.AppendRow(table.Row{"Курс", info.Course})
	t.AppendRow(table.Row{"Группа", info.Group})
	t.AppendRow(table.Row{"Форма финансирования", info.FinancingForm})
	t.AppendRow(table.Row{"Общежитие", info.Dormitory})
	t.AppendRow(table.Row{"Дата окончания", info.EndDate})
	if info.PersonalEmail != "" {
		t.AppendRow(table.Row{"Личная почта", info.PersonalEmail})
	}
	if info.PersonalPhone != "" {
		t.AppendRow(table.Row{"Личный телефон", info.PersonalPhone})
	}
	if info.CorporateEmail != "" {
		t.AppendRow(table.Row{"Корпоративная почта", info.CorporateEmail})
	}

	t.Render()
}

func renderJson(out io.Writer, info misis.StudentInfo) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
