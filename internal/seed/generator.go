package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"db-crud/internal/schema"

	"github.com/brianvoe/gofakeit/v6"
)

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// textLimit matches the VARCHAR(255) columns of the sample schema.
const textLimit = 255

func pick(list []string) string {
	return list[seededRand.Intn(len(list))]
}

func GeneratePersonName() string {
	return pick(LastNames) + " " + pick(FirstNames) + " " + pick(Patronymic)
}

func GeneratePhone() string {
	return fmt.Sprintf("+7-9%02d-%03d-%02d-%02d", seededRand.Intn(100), seededRand.Intn(1000), seededRand.Intn(100), seededRand.Intn(100))
}

func GenerateRecordBook() string {
	return fmt.Sprintf("RB-%d-%05d", 2015+seededRand.Intn(10), seededRand.Intn(100000))
}

func GenerateGroupName() string {
	prefix := strings.ToUpper(pick(Faculties)[:2])
	return fmt.Sprintf("%s-%d%02d", prefix, 1+seededRand.Intn(5), 1+seededRand.Intn(20))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// GenerateValue produces a plausible value for a column, driven first by the
// column's meaning and then by its kind. It returns nil for kinds it cannot
// fake; nullable columns then stay empty.
func GenerateValue(col *schema.Column, tableName string) any {
	colName := strings.ToLower(col.Name)

	switch col.Kind {
	case schema.KindText:
		return truncate(generateText(col, colName, tableName), textLimit)

	case schema.KindDate:
		val := gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
		if strings.Contains(colName, "end") {
			val = val.AddDate(0, 4, 0)
		}
		if col.DataType == "date" {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")

	case schema.KindInteger:
		if strings.Contains(colName, "year") {
			return int64(2000 + seededRand.Intn(26))
		}
		if col.Meaning == "yesno" || strings.HasPrefix(colName, "is_") {
			return int64(seededRand.Intn(2))
		}
		if col.Meaning == "grade" {
			return int64(2 + seededRand.Intn(4))
		}
		if strings.Contains(col.DataType, "smallint") || strings.Contains(col.DataType, "tinyint") {
			return int64(gofakeit.Number(0, 127))
		}
		return int64(gofakeit.Number(1, 50000))

	case schema.KindFloat:
		return gofakeit.Price(0.99, 99.99)
	}
	return nil
}

func generateText(col *schema.Column, colName, tableName string) string {
	switch col.Meaning {
	case "email":
		return gofakeit.Email()
	case "phone":
		return GeneratePhone()
	case "address":
		return fmt.Sprintf("%s, %s %d", pick(Cities), gofakeit.StreetName(), 1+seededRand.Intn(200))
	case "zipcode":
		return fmt.Sprintf("%06d", seededRand.Intn(1000000))
	case "status":
		return pick(Statuses)
	case "grade":
		return pick(Grades)
	case "code":
		return GenerateRecordBook()
	case "yesno":
		if seededRand.Intn(2) == 0 {
			return "Y"
		}
		return "N"
	case "date":
		return gofakeit.Date().Format("2006-01-02")
	case "title", "description":
		return gofakeit.Sentence(6)
	case "name":
		if colName == "name" {
			return entityName(tableName)
		}
		return GeneratePersonName()
	}

	if strings.Contains(colName, "data") || strings.Contains(colName, "note") {
		return gofakeit.Sentence(8)
	}
	return gofakeit.Word()
}

// entityName names an entity row of a known table, or falls back to a
// person's name.
func entityName(tableName string) string {
	switch tableName {
	case "groups":
		return GenerateGroupName()
	case "semesters":
		return fmt.Sprintf("%s %d", pick(Seasons), 2015+seededRand.Intn(11))
	}
	if vocab, ok := tableVocabulary[tableName]; ok {
		return pick(vocab)
	}
	return GeneratePersonName()
}
