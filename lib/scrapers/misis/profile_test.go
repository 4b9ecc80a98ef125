package misis

import (
	"strings"
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/profile.html
var profilePage string

func TestParseStudentProfile(t *testing.T) {
	info, err := ParseStudentProfile([]byte(profilePage))
	require.NoError(t, err)

	expected := StudentInfo{
		FullName:         "Иванов Иван Иванович",
		RecordBookNumber: "12345678",
		StudyForm:        "Очная",
		PreparationLevel: "Бакалавриат",
		Specialization:   "Информационные технологии",
		Specialty:        "09.03.01 Информатика и вычислительная техника",
		Faculty:          "ИТКН",
		Course:           "3",
		Group:            "БИВТ-21-1",
		FinancingForm:    "Бюджетная основа",
		Dormitory:        "Да",
		EndDate:          "30.06.2025",
		PersonalEmail:    "ivanov@example.com",
		PersonalPhone:    "+7 (999) 123-45-67",
		CorporateEmail:   "m2100001@edu.misis.ru",
	}
	if diff := cmp.Diff(expected, info); diff != "" {
		t.Fatalf("parsed profile mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStudentProfileMissingCourse(t *testing.T) {
	page := strings.Replace(profilePage, "Курс:", "Смещение:", 1)

	_, err := ParseStudentProfile([]byte(page))
	require.Error(t, err)
	require.Equal(t, KindParse, KindOf(err))
	require.Contains(t, err.Error(), "course")
}

func TestParseStudentProfileMissingNameBlock(t *testing.T) {
	page := strings.Replace(profilePage, "person_name", "person_missing", 1)

	_, err := ParseStudentProfile([]byte(page))
	require.Error(t, err)
	require.Equal(t, KindParse, KindOf(err))
	require.Contains(t, err.Error(), "full_name")
}

func TestParseStudentProfileEmptyName(t *testing.T) {
	page := strings.Replace(profilePage, "Иванов Иван Иванович", " ", 1)

	_, err := ParseStudentProfile([]byte(page))
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
	require.Contains(t, err.Error(), "full_name")
}

func TestParseStudentProfileInvalidEmail(t *testing.T) {
	page := strings.Replace(profilePage, "ivanov@example.com", "not-an-email", 1)

	_, err := ParseStudentProfile([]byte(page))
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
	require.Contains(t, err.Error(), "personal_email")
}

func TestParseStudentProfileOptionalFieldsAbsent(t *testing.T) {
	page := profilePage
	for _, caption := range []string{
		"Специализация:", "Личная почта:",
		"Личный номер телефона:", "Корпоративная почта:",
	} {
		page = strings.Replace(page, caption, "Прочее:", 1)
	}

	info, err := ParseStudentProfile([]byte(page))
	require.NoError(t, err)
	require.Empty(t, info.Specialization)
	require.Empty(t, info.PersonalEmail)
	require.Empty(t, info.PersonalPhone)
	require.Empty(t, info.CorporateEmail)
}
