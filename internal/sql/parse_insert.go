package sql

// parseInsert parses:
//
//	INSERT INTO tableName [(col, ...)] VALUES (v1, v2, ...)[, (...)]
func (p *parser) parseInsert() (Statement, error) {
	if err := p.expect("INSERT", "INTO"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	ins := &InsertStmt{TableName: name}

	if p.peek().Is("(") {
		if ins.Columns, err = p.parseNameList(); err != nil {
			return nil, err
		}
	}
	if err := p.expect("VALUES"); err != nil {
		return nil, err
	}

	for {
		if err := p.expect("("); err != nil {
			return nil, err
		}
		var row Row
		for {
			v, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			row = append(row, v)
			if p.accept(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		if len(ins.Columns) > 0 && len(row) != len(ins.Columns) {
			return nil, p.errorf("INSERT: %d columns named but %d values given", len(ins.Columns), len(row))
		}
		ins.Rows = append(ins.Rows, row)

		if !p.accept(",") {
			return ins, nil
		}
	}
}
