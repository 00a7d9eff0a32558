package sql

// parseDrop parses DROP TABLE|VIEW [IF EXISTS] name.
func (p *parser) parseDrop() (Statement, error) {
	if err := p.expect("DROP"); err != nil {
		return nil, err
	}
	ds := &DropStmt{}
	switch {
	case p.accept("TABLE"):
	case p.accept("VIEW"):
		ds.View = true
	default:
		return nil, p.unexpected()
	}
	if p.accept("IF") {
		if err := p.expect("EXISTS"); err != nil {
			return nil, err
		}
		ds.IfExists = true
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	ds.Name = name
	return ds, nil
}

// parseShow parses SHOW TABLES.
func (p *parser) parseShow() (Statement, error) {
	if err := p.expect("SHOW", "TABLES"); err != nil {
		return nil, err
	}
	return &ShowTablesStmt{}, nil
}

// parseDescribe parses DESCRIBE name (DESC is accepted too).
func (p *parser) parseDescribe() (Statement, error) {
	p.next()
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	return &DescribeStmt{TableName: name}, nil
}
