package seed

var (
	LastNames  = []string{"Ivanov", "Petrova", "Smirnov", "Kuznetsova", "Popov", "Sokolova", "Lebedev", "Kozlova", "Novikov", "Morozova", "Volkov", "Pavlova", "Semenov", "Golubeva", "Vinogradov", "Bogdanova"}
	FirstNames = []string{"Alexei", "Maria", "Dmitri", "Anna", "Sergei", "Elena", "Ivan", "Olga", "Nikolai", "Tatiana", "Pavel", "Irina", "Mikhail", "Svetlana", "Andrei", "Natalia"}
	Patronymic = []string{"Ivanovich", "Petrovna", "Sergeevich", "Andreevna", "Nikolaevich", "Dmitrievna", "Alexeevich", "Mikhailovna"}

	Faculties = []string{"Physics", "Mathematics", "History", "Philology", "Chemistry", "Biology", "Economics", "Law", "Computer Science", "Geography"}
	Subjects  = []string{"Calculus", "Linear Algebra", "Mechanics", "Optics", "Organic Chemistry", "World History", "Databases", "Operating Systems", "Statistics", "Philosophy", "Microeconomics", "Genetics"}
	Statuses  = []string{"active", "on leave", "retired", "visiting"}
	Grades    = []string{"5", "4", "3", "2", "pass", "fail"}
	Seasons   = []string{"Fall", "Spring"}
	Cities    = []string{"Moscow", "Kazan", "Novosibirsk", "Tomsk", "Yekaterinburg", "Samara", "Perm", "Omsk"}
)

// tableVocabulary gives a themed pool for the "name" column of known tables.
var tableVocabulary = map[string][]string{
	"faculties": Faculties,
	"subjects":  Subjects,
}
