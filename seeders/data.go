package seeders

type groupSeed struct {
	Name        string
	Description string
}

type equipmentSeed struct {
	Name         string
	Model        string
	Manufacturer string
	SerialNumber string
	Status       string
	Health       int
	Groups       []string
}

type documentSeed struct {
	Title    string
	Category string
	// Groups - общие для группы, Equipments - прямые ссылки по серийному номеру.
	Groups     []string
	Equipments []string
}

type partSeed struct {
	Name       string
	Reference  string
	Quantity   int
	UnitPrice  float64
	Groups     []string
	Equipments []string
}

var groupsData = []groupSeed{
	{Name: "Насосы", Description: "Центробежные и роторные насосы водоснабжения"},
	{Name: "Компрессоры", Description: "Воздушные компрессоры цеха"},
	{Name: "Вентиляция", Description: ""},
}

var equipmentsData = []equipmentSeed{
	{Name: "Насос Н-1", Model: "CR 32-2", Manufacturer: "Grundfos", SerialNumber: "GR-0001", Status: "operational", Health: 95, Groups: []string{"Насосы"}},
	{Name: "Насос Н-2", Model: "CR 32-2", Manufacturer: "Grundfos", SerialNumber: "GR-0002", Status: "maintenance", Health: 60, Groups: []string{"Насосы"}},
	{Name: "Компрессор К-1", Model: "GA 30", Manufacturer: "Atlas Copco", SerialNumber: "AC-1001", Status: "operational", Health: 88, Groups: []string{"Компрессоры"}},
	{Name: "Вентилятор В-1", Model: "VR 400", Manufacturer: "Systemair", SerialNumber: "SA-3001", Status: "faulty", Health: 20, Groups: []string{"Вентиляция"}},
	{Name: "Щит управления", Model: "ЩУ-3", Manufacturer: "ИЭК", SerialNumber: "IEK-77", Status: "operational", Health: 100},
}

var documentsData = []documentSeed{
	{Title: "Руководство по эксплуатации CR", Category: "manual", Groups: []string{"Насосы"}},
	{Title: "Паспорт насоса Н-1", Category: "passport", Equipments: []string{"GR-0001"}},
	{Title: "Регламент ТО компрессоров", Category: "procedure", Groups: []string{"Компрессоры"}},
	{Title: "Схема щита", Category: "drawing", Equipments: []string{"IEK-77"}},
}

var partsData = []partSeed{
	{Name: "Торцевое уплотнение", Reference: "CR-SEAL-32", Quantity: 6, UnitPrice: 84.5, Groups: []string{"Насосы"}},
	{Name: "Подшипник 6306", Reference: "SKF-6306", Quantity: 10, UnitPrice: 12.9, Equipments: []string{"GR-0002"}},
	{Name: "Воздушный фильтр", Reference: "AC-AF-30", Quantity: 4, UnitPrice: 45, Groups: []string{"Компрессоры"}},
	{Name: "Ремень привода", Reference: "SA-BELT-400", Quantity: 2, UnitPrice: 18, Equipments: []string{"SA-3001"}},
}
