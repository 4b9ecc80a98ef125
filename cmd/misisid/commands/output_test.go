package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"misisid/lib/scrapers/misis"

	"github.com/stretchr/testify/require"
)

var testInfo = misis.StudentInfo{
	FullName:         "Иванов Иван Иванович",
	RecordBookNumber: "12345678",
	StudyForm:        "Очная",
	PreparationLevel: "Бакалавриат",
	Specialty:        "09.03.01",
	Faculty:          "ИТКН",
	Course:           "3",
	Group:            "БИВТ-21-1",
	FinancingForm:    "Бюджетная основа",
	Dormitory:        "Нет",
	EndDate:          "30.06.2025",
	PersonalEmail:    "ivanov@example.com",
}

func TestRenderText(t *testing.T) {
	var out bytes.Buffer
	renderText(&out, testInfo)

	rendered := out.String()
	require.Contains(t, rendered, "Иванов Иван Иванович")
	require.Contains(t, rendered, "Номер зачетки")
	require.Contains(t, rendered, "ivanov@example.com")
	// absent optional fields are not rendered
	require.NotContains(t, rendered, "Специализация")
	require.NotContains(t, rendered, "Корпоративная почта")
}

func TestRenderJson(t *testing.T) {
	var out bytes.Buffer
	err := renderJson(&out, testInfo)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, "Иванов Иван Иванович", decoded["full_name"])
	require.Equal(t, "3", decoded["course"])
	// omitempty keeps absent optional fields out of the output
	require.NotContains(t, decoded, "specialization")
	require.NotContains(t, decoded, "corporate_email")
	require.Equal(t, "ivanov@example.com", decoded["personal_email"])
}
