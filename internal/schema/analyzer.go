package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-crud/internal/dialect"
)

// ---------------------------------------------------------------------
// 1. Reflection
// ---------------------------------------------------------------------

// Load reflects every base table of schemaName into a Catalog. Reflection is
// read-only and all-or-nothing: any failed query or scan fails the whole load.
func Load(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName string) (*Catalog, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	target := d.GetSchemaName(schemaName)

	// Normalized keys for case-insensitive matching (Oracle support)
	tableMap := make(map[string]*Table)
	var tables []*Table

	// --- Step 1: Fetch Tables ---
	rows, err := db.QueryContext(ctx, d.GetTablesQuery(), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		t := &Table{Name: name, Dependencies: []string{}}
		tableMap[strings.ToUpper(name)] = t
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	rows.Close()

	// --- Step 2: Fetch Columns ---
	colRows, err := db.QueryContext(ctx, d.GetColumnsQuery(), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var tName, cName, dType, isNull, cKey sql.NullString
		if err := colRows.Scan(&tName, &cName, &dType, &isNull, &cKey); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}

		// Views and other non-base relations have no entry in tableMap.
		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}

		dataType := d.NormalizeType(dType.String)
		t.Columns = append(t.Columns, &Column{
			Name:       cName.String,
			DataType:   dataType,
			Kind:       KindOf(dataType),
			IsNullable: strings.EqualFold(isNull.String, "YES"),
			IsPK:       strings.Contains(cKey.String, "PRI"),
			Meaning:    AnalyzeMeaning(cName.String),
		})
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	colRows.Close()

	// --- Step 3: Fetch Foreign Keys ---
	fkRows, err := db.QueryContext(ctx, d.GetForeignKeysQuery(), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cConst, cName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cConst, &cName, &rTable, &rCol); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !cName.Valid || !rTable.Valid {
			continue
		}

		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}

		refName := rTable.String
		ref, known := tableMap[strings.ToUpper(refName)]
		if known {
			refName = ref.Name // declared case
			if ref != t {
				t.Dependencies = append(t.Dependencies, refName)
			}
		}
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Column:    cName.String,
			RefTable:  refName,
			RefColumn: rCol.String,
		})
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}

	// Constraints declared against the parent's implicit key report no column.
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefColumn != "" {
				continue
			}
			if ref, ok := tableMap[strings.ToUpper(fk.RefTable)]; ok {
				if pk, err := ref.PrimaryKey(); err == nil {
					fk.RefColumn = pk.Name
				}
			}
		}
	}

	return NewCatalog(tables), nil
}

// ---------------------------------------------------------------------
// 2. Sorting Algorithm (Topological / Greedy)
// ---------------------------------------------------------------------

// SortTablesByFKCount sorts tables by dependency order.
// It handles circular dependencies by using a scoring system.
func SortTablesByFKCount(tables []*Table) []*Table {
	var sorted []*Table
	processed := make(map[string]bool)
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	for len(sorted) < len(tables) {
		added := false

		// Pass 1: Add tables whose dependencies are fully satisfied
		for _, t := range tables {
			if processed[t.Name] {
				continue
			}

			allDepsProcessed := true
			for _, depName := range t.Dependencies {
				if _, known := byName[depName]; known && !processed[depName] {
					allDepsProcessed = false
					break
				}
			}

			if allDepsProcessed {
				sorted = append(sorted, t)
				processed[t.Name] = true
				added = true
			}
		}

		if added {
			continue
		}

		// Pass 2: No table added, so there is a cycle. Break it using a heuristic score:
		// fewer unprocessed dependencies is better, taking part in a cycle is a bonus.
		var bestTable *Table
		bestScore := -999999

		for _, t := range tables {
			if processed[t.Name] {
				continue
			}

			score := 0
			isCircular := false
			for _, depName := range t.Dependencies {
				if processed[depName] {
					continue
				}
				score -= 100
				if dep, ok := byName[depName]; ok && !isCircular {
					for _, back := range dep.Dependencies {
						if back == t.Name {
							isCircular = true
							break
						}
					}
				}
			}
			if isCircular {
				score += 500
			}

			// Tie-breaker: Name (Deterministic)
			if score > bestScore || (score == bestScore && (bestTable == nil || t.Name > bestTable.Name)) {
				bestScore = score
				bestTable = t
			}
		}

		if bestTable == nil {
			break
		}
		sorted = append(sorted, bestTable)
		processed[bestTable.Name] = true
	}

	return sorted
}
