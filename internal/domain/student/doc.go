// Package student содержит доменную модель студента, подающего заявку на обмен.
//
// Пакет определяет:
//
//   - Сущность Student: секция, год обучения, GPA, флаг провала, порядок
//     предпочтений по соглашениям и авторитетные ранги внешнего распределения
//   - Value Objects: Section, Year
//   - Интерфейс репозитория Repository
//
// # Архитектурные принципы
//
//  1. Нулевые внешние зависимости - только стандартная библиотека Go
//  2. Dependency Inversion - интерфейсы реализуются в infrastructure
//
// # Пример
//
//	s, err := student.NewStudent(student.NewStudentParams{
//	    ID:      uuid.NewString(),
//	    Name:    "Ada Lovelace",
//	    Email:   "ada@epfl.ch",
//	    Section: "in",
//	    Year:    student.YearThird,
//	    GPA:     5.25,
//	})
//
// Авторитетные ранги (AlphaRanks) выставляет внешний процесс распределения;
// этот пакет их только хранит и передаёт дальше.
package student
