package misis

import (
	"bytes"

	"misisid/lib/htmlutil"
	"misisid/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// profile page captions, matched by substring against the label text
const (
	captionRecordBook       = "Номер зачетки:"
	captionStudyForm        = "Форма обучения:"
	captionPreparationLevel = "Уровень подготовки:"
	captionSpecialization   = "Специализация:"
	captionSpecialty        = "Специальность:"
	captionFaculty          = "Факультет:"
	captionCourse           = "Курс:"
	captionGroup            = "Группа:"
	captionFinancingForm    = "Форма финансирования:"
	captionDormitory        = "Общежитие:"
	captionEndDate          = "Дата окончания:"
	captionPersonalEmail    = "Личная почта:"
	captionPersonalPhone    = "Личный номер телефона:"
	captionCorporateEmail   = "Корпоративная почта:"
)

// ParseStudentProfile scrapes the label/value pairs of the profile
// page into a StudentInfo. Every required field must be present as a
// label on the page, otherwise a parse error naming the field is
// returned. Field values are validated by NewStudentInfo afterwards.
func ParseStudentProfile(html []byte) (StudentInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return StudentInfo{}, classify(err, KindParse, "failed to parse profile page")
	}

	fields := map[string]*string{}

	nameBlock := doc.Find("div.person_name").First()
	if nameBlock.Length() > 0 {
		fullName := htmlutil.CleanText(nameBlock.Find("h3").First())
		fields["full_name"] = &fullName
	}

	lookup := func(caption string) *string {
		var value *string
		doc.Find("span.person__label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
			if !textutil.MatchCaption(label.Text(), caption) {
				return true
			}
			sibling := label.NextAllFiltered("span.person__value").First()
			if sibling.Length() == 0 {
				return false
			}
			v := htmlutil.CleanText(sibling)
			value = &v
			return false
		})
		return value
	}

	fields["record_book_number"] = lookup(captionRecordBook)
	fields["study_form"] = lookup(captionStudyForm)
	fields["preparation_level"] = lookup(captionPreparationLevel)
	fields["specialization"] = lookup(captionSpecialization)
	fields["specialty"] = lookup(captionSpecialty)
	fields["faculty"] = lookup(captionFaculty)
	fields["course"] = lookup(captionCourse)
	fields["group"] = lookup(captionGroup)
	fields["financing_form"] = lookup(captionFinancingForm)
	fields["dormitory"] = lookup(captionDormitory)
	fields["end_date"] = lookup(captionEndDate)
	fields["personal_email"] = lookup(captionPersonalEmail)
	fields["personal_phone"] = lookup(captionPersonalPhone)
	fields["corporate_email"] = lookup(captionCorporateEmail)

	requiredFields := []string{
		"full_name", "record_book_number", "study_form",
		"preparation_level", "specialty", "faculty",
		"course", "group", "financing_form", "dormitory", "end_date",
	}
	for _, field := range requiredFields {
		if fields[field] == nil {
			return StudentInfo{}, newErrorf(
				KindParse, "required field %q not found on profile page", field,
			)
		}
	}

	text := func(field string) string {
		if fields[field] == nil {
			return ""
		}
		return *fields[field]
	}

	return NewStudentInfo(StudentInfo{
		FullName:         text("full_name"),
		RecordBookNumber: text("record_book_number"),
		StudyForm:        text("study_form"),
		PreparationLevel: text("preparation_level"),
		Specialization:   text("specialization"),
		Specialty:        text("specialty"),
		Faculty:          text("faculty"),
		Course:           text("course"),
		Group:            text("group"),
		FinancingForm:    text("financing_form"),
		Dormitory:        text("dormitory"),
		EndDate:          text("end_date"),
		PersonalEmail:    text("personal_email"),
		PersonalPhone:    text("personal_phone"),
		CorporateEmail:   text("corporate_email"),
	})
}
