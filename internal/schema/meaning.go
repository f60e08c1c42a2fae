package schema

import "strings"

var abbreviations = map[string]string{
	"nm": "name", "fio": "name", "dt": "date", "no": "number", "cd": "code",
	"desc": "description", "amt": "amount", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "hp": "phone", "ph": "phone", "mobile": "phone",
	"mail": "email", "zip": "zipcode", "post": "zipcode",
	"msg": "message", "txt": "text", "tit": "title", "subj": "subject",
	"dept": "department", "grp": "group", "stat": "status", "sts": "status",
	"yn": "yesno", "is": "yesno", "flg": "flag",
}

// meaningKeywords are checked in order against the decoded column name.
var meaningKeywords = []struct {
	keyword string
	meaning string
}{
	{"email", "email"},
	{"phone", "phone"},
	{"address", "address"},
	{"zipcode", "zipcode"},
	{"title", "title"},
	{"name", "name"},
	{"dean", "name"},
	{"date", "date"},
	{"status", "status"},
	{"grade", "grade"},
	{"record book", "code"},
	{"code", "code"},
	{"number", "code"},
	{"description", "description"},
	{"text", "description"},
	{"yesno", "yesno"},
}

// AnalyzeMeaning classifies a column by its name, expanding common
// abbreviations first. It returns "" when nothing is recognized.
func AnalyzeMeaning(colName string) string {
	parts := strings.Split(strings.ToLower(colName), "_")
	for i, part := range parts {
		if full, ok := abbreviations[part]; ok {
			parts[i] = full
		}
	}
	decoded := strings.Join(parts, " ")

	for _, k := range meaningKeywords {
		if strings.Contains(decoded, k.keyword) {
			return k.meaning
		}
	}
	return ""
}
