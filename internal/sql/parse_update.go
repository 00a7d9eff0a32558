package sql

// parseUpdate parses:
//
//	UPDATE tableName SET col1 = value1, col2 = value2 WHERE cond [AND cond ...]
func (p *parser) parseUpdate() (Statement, error) {
	if err := p.expect("UPDATE"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect("SET"); err != nil {
		return nil, err
	}

	up := &UpdateStmt{TableName: name}
	for {
		col, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		up.Assignments = append(up.Assignments, Assignment{Column: col, Value: v})
		if !p.accept(",") {
			break
		}
	}

	// for safety, require WHERE
	if !p.accept("WHERE") {
		return nil, p.errorf("UPDATE: WHERE clause required")
	}
	if up.Where, err = p.parseWhereClause(); err != nil {
		return nil, err
	}
	return up, nil
}
