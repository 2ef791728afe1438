package ast

import "github.com/songww/xiayu/sqlerr"

func errRowWidth(row, got, want int) error {
	return sqlerr.Conversion("row %d has %d values, expected %d", row, got, want)
}

func errNotATable(x any) error {
	return sqlerr.Conversion("cannot use %T as a table", x)
}

func errNotAColumn(x any) error {
	return sqlerr.Conversion("cannot use %T as a column", x)
}

func errSourceKind(method string, kind SourceKind) error {
	names := [...]string{"single-row", "multi-row", "select"}
	return sqlerr.Conversion("%s is not valid on a %s insert", method, names[kind])
}
