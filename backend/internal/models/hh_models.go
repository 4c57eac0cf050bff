package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// VacanciesDocument документ хранилища вакансий: {"items": [...]}.
// Элементы хранятся как есть, чтобы поля, которые мы не разбираем,
// переживали перезапись файла.
type VacanciesDocument struct {
	Items *[]json.RawMessage `json:"items"`
}

// VacanciesPage страница ответа HH.ru на GET /vacancies
type VacanciesPage struct {
	Items   []json.RawMessage `json:"items"`
	Found   int               `json:"found"`
	Pages   int               `json:"pages"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// HHVacancy вакансия в формате HH.ru (только поля, которые нужны хранилищу)
type HHVacancy struct {
	ID           VacancyID  `json:"id"`
	Name         string     `json:"name"`
	AlternateURL string     `json:"alternate_url"`
	Area         *HHArea    `json:"area"`
	Snippet      *HHSnippet `json:"snippet"`
	Salary       *Salary    `json:"salary"`
}

// HHArea регион вакансии
type HHArea struct {
	Name string `json:"name"`
}

// HHSnippet краткое описание вакансии
type HHSnippet struct {
	Requirement *string `json:"requirement"`
}

// Salary информация о зарплате
type Salary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency *string  `json:"currency"`
}

// VacancyID идентификатор вакансии. HH.ru отдает id строкой,
// сохраненные нами вакансии пишут его числом; принимаем оба варианта.
type VacancyID int

func (id *VacancyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("invalid vacancy id %s", string(data))
		}
		n = int(f)
	}

	*id = VacancyID(n)
	return nil
}
