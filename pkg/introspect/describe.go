package introspect

import (
	"context"
)

// DescribeNamespace gathers everything the other operations report for every
// table and view of namespace. Tables are visited one after another and the
// first failure aborts the whole snapshot. Views carry columns only.
//
// Constraints are looked up through GetConstraints and are therefore subject
// to the same constraint namespace.
func (i *Introspector) DescribeNamespace(ctx context.Context, namespace string) (*NamespaceSnapshot, error) {
	tables, err := i.ListTables(ctx, namespace)
	if err != nil {
		return nil, err
	}

	snap := &NamespaceSnapshot{
		Namespace: namespace,
		Tables:    make([]TableSnapshot, 0, len(tables)),
	}
	for _, t := range tables {
		ts := TableSnapshot{TableDescriptor: t}

		if ts.Columns, err = i.DescribeColumns(ctx, namespace, t.Name); err != nil {
			return nil, err
		}
		if t.Kind == TableKindTable {
			if ts.Indexes, err = i.GetIndexes(ctx, namespace, t.Name); err != nil {
				return nil, err
			}
			if ts.Relations, err = i.GetRelations(ctx, namespace, t.Name); err != nil {
				return nil, err
			}
			if ts.Constraints, err = i.GetConstraints(ctx, t.Name); err != nil {
				return nil, err
			}
			if ts.KeyColumns, err = i.GetKeyColumns(ctx, namespace, t.Name); err != nil {
				return nil, err
			}
		}
		snap.Tables = append(snap.Tables, ts)
	}
	return snap, nil
}
