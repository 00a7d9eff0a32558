package sql

// parseDelete parses:
//
//	DELETE FROM tableName WHERE cond [AND cond ...]
func (p *parser) parseDelete() (Statement, error) {
	if err := p.expect("DELETE", "FROM"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	// for safety, require WHERE
	if !p.accept("WHERE") {
		return nil, p.errorf("DELETE: WHERE clause required")
	}
	where, err := p.parseWhereClause()
	if err != nil {
		return nil, err
	}
	return &DeleteStmt{TableName: name, Where: where}, nil
}
