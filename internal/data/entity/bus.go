package entity

type Bus struct {
	Base
	Code     string `db:"code"`
	Operator string `db:"operator"`
	Seats    int    `db:"seats"`
}
