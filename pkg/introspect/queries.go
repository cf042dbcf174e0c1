package introspect

// Catalog queries. Every name is a bound parameter; the only identifier that
// reaches SQL text is the quoted projection target built in columns.go.

const listTablesQuery = `
	SELECT c.relname, c.relkind::text
	FROM pg_catalog.pg_class c
	LEFT JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
	WHERE c.relkind IN ('r', 'v', '')
	  AND n.nspname = $1
	  AND pg_catalog.pg_table_is_visible(c.oid)`

const columnInfoQuery = `
	SELECT column_name, is_nullable, character_maximum_length::int, column_default
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2`

// Only the leading key position is joined; callers drop multi-column rows.
const indexFlagsQuery = `
	SELECT attr.attname, idx.indkey::text, idx.indisunique, idx.indisprimary
	FROM pg_catalog.pg_class c
	JOIN pg_catalog.pg_index idx ON c.oid = idx.indrelid
	JOIN pg_catalog.pg_class c2 ON idx.indexrelid = c2.oid
	JOIN pg_catalog.pg_attribute attr ON attr.attrelid = c.oid AND attr.attnum = idx.indkey[0]
	JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
	WHERE c.relname = $1 AND n.nspname = $2`

const relationsQuery = `
	SELECT a1.attname, c2.relname, a2.attname
	FROM pg_catalog.pg_constraint con
	JOIN pg_catalog.pg_class c1 ON con.conrelid = c1.oid
	JOIN pg_catalog.pg_namespace n ON n.oid = c1.relnamespace
	JOIN pg_catalog.pg_class c2 ON con.confrelid = c2.oid
	JOIN pg_catalog.pg_attribute a1 ON a1.attrelid = c1.oid AND a1.attnum = con.conkey[1]
	JOIN pg_catalog.pg_attribute a2 ON a2.attrelid = c2.oid AND a2.attnum = con.confkey[1]
	WHERE c1.relname = $1
	  AND n.nspname = $2
	  AND con.contype = 'f'`

const constraintsQuery = `
	SELECT
		c.conname,
		array(
			SELECT ca.attname::text
			FROM unnest(c.conkey) WITH ORDINALITY AS cols(colid, arridx)
			JOIN pg_catalog.pg_attribute ca ON cols.colid = ca.attnum
			WHERE ca.attrelid = c.conrelid
			ORDER BY cols.arridx
		),
		c.contype::text,
		(SELECT fkc.relname::text FROM pg_catalog.pg_class fkc WHERE fkc.oid = c.confrelid),
		(SELECT fka.attname::text FROM pg_catalog.pg_attribute fka
		 WHERE fka.attrelid = c.confrelid AND fka.attnum = c.confkey[1]),
		cl.reloptions
	FROM pg_catalog.pg_constraint c
	JOIN pg_catalog.pg_class cl ON c.conrelid = cl.oid
	JOIN pg_catalog.pg_namespace ns ON cl.relnamespace = ns.oid
	WHERE ns.nspname = $1 AND cl.relname = $2`

// Expression keys have no attribute and non-btree methods have no ordering;
// both aggregate as empty strings so the arrays scan into []string.
const indexesQuery = `
	SELECT
		indexname,
		array_agg(COALESCE(attname::text, '') ORDER BY arridx),
		indisunique,
		indisprimary,
		array_agg(COALESCE(ordering, '') ORDER BY arridx),
		amname::text,
		exprdef,
		s2.attoptions
	FROM (
		SELECT
			c2.relname::text AS indexname, idx.*, attr.attname, am.amname,
			CASE
				WHEN idx.indexprs IS NOT NULL THEN pg_catalog.pg_get_indexdef(idx.indexrelid)
			END AS exprdef,
			CASE am.amname
				WHEN 'btree' THEN
					CASE (idx.option & 1)
						WHEN 1 THEN 'DESC' ELSE 'ASC'
					END
			END AS ordering,
			c2.reloptions AS attoptions
		FROM (
			SELECT i.*, k.key, k.option, k.arridx
			FROM pg_catalog.pg_index i,
				unnest(i.indkey::int2[], i.indoption::int2[]) WITH ORDINALITY AS k(key, option, arridx)
		) idx
		LEFT JOIN pg_catalog.pg_class c ON idx.indrelid = c.oid
		LEFT JOIN pg_catalog.pg_class c2 ON idx.indexrelid = c2.oid
		LEFT JOIN pg_catalog.pg_am am ON c2.relam = am.oid
		LEFT JOIN pg_catalog.pg_attribute attr ON attr.attrelid = c.oid AND attr.attnum = idx.key
		WHERE c.relname = $1
	) s2
	GROUP BY indexname, indisunique, indisprimary, amname, exprdef, attoptions`

const keyColumnsQuery = `
	SELECT kcu.column_name, ccu.table_name AS referenced_table, ccu.column_name AS referenced_column
	FROM information_schema.constraint_column_usage ccu
	LEFT JOIN information_schema.key_column_usage kcu
		ON ccu.constraint_catalog = kcu.constraint_catalog
		AND ccu.constraint_schema = kcu.constraint_schema
		AND ccu.constraint_name = kcu.constraint_name
	LEFT JOIN information_schema.table_constraints tc
		ON ccu.constraint_catalog = tc.constraint_catalog
		AND ccu.constraint_schema = tc.constraint_schema
		AND ccu.constraint_name = tc.constraint_name
	WHERE kcu.table_name = $1
	  AND tc.constraint_type = 'FOREIGN KEY'
	  AND tc.table_schema = $2`
