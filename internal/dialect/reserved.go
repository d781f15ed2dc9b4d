package dialect

import "strings"

// Keywords every supported dialect reserves (or rejects as a bare column
// name in CREATE TABLE).
const commonReserved = `
all alter and any as asc between by case check collate column constraint
create cross current_date current_time current_timestamp current_user
default delete desc distinct drop else end except exists false fetch for
foreign from full grant group having in inner insert intersect into is join
key left like limit natural not null offset on or order outer primary
references right select set table then to true union unique update user
using values when where with`

var dialectReserved = map[Dialect]string{
	Postgres: `
analyse analyze array asymmetric both cast current_role do initially lateral
leading localtime localtimestamp only placing returning session_user some
symmetric trailing variadic window`,
	MySQL: `
accessible add before bigint binary blob call cascade change char condition
continue convert database databases dec decimal declare delayed describe
div double dual each enclosed escaped exit explain float force fulltext
generated if ignore index int integer interval keys kill lead leave lines
load lock long loop match mod modifies numeric option optionally out
partition precision procedure range read real regexp release rename repeat
replace require restrict return revoke rlike schema schemas separator show
signal smallint spatial sql starting stored terminated trigger undo unlock
unsigned usage utc_date utc_time utc_timestamp varchar varying virtual
while write xor year_month zerofill`,
	SQLite: `
abort autoincrement deferrable escape exclusive glob index indexed isnull
notnull raise regexp transaction vacuum`,
	MSSQL: `
add backup begin break browse bulk cascade close clustered coalesce commit
compute contains containstable continue convert database dbcc deallocate
declare deny disk distributed double dump errlvl escape exec execute exit
external file fillfactor freetext function goto holdlock identity
identity_insert identitycol if index kill lineno load merge national
nocheck nonclustered nullif of off offsets open opendatasource openquery
openrowset openxml over percent pivot plan precision proc procedure public
raiserror read readtext reconfigure restore restrict return revert revoke
rollback rowcount rowguidcol rule save schema securityaudit semantickeyphrasetable
session_user setuser shutdown some statistics system_user tablesample
textsize top tran transaction trigger truncate try_convert tsequal unpivot
updatetext use view waitfor while writetext`,
}

var reserved = buildReserved()

func buildReserved() map[Dialect]map[string]struct{} {
	common := strings.Fields(commonReserved)
	out := make(map[Dialect]map[string]struct{}, len(All))
	for _, d := range All {
		words := append(append([]string(nil), common...), strings.Fields(dialectReserved[d])...)
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		out[d] = set
	}
	return out
}

// IsReserved reports whether id (compared case-insensitively) is a keyword
// d does not accept as a bare identifier.
func IsReserved(d Dialect, id string) bool {
	_, ok := reserved[d][strings.ToLower(id)]
	return ok
}

// Ident renders id for DDL in d. It is quoted when quoteAll is set or when
// id is a reserved word in d; otherwise it is emitted bare.
func Ident(d Dialect, id string, quoteAll bool) string {
	if quoteAll || IsReserved(d, id) {
		return QuoteIdent(d, id)
	}
	return id
}
