package sql

// parseCreate parses:
//
//	CREATE [EXTERNAL] TABLE [IF NOT EXISTS] name (col TYPE [COMMENT '...'], ...) [COMMENT '...']
//	CREATE VIEW [IF NOT EXISTS] name [COMMENT '...'] AS SELECT ...
func (p *parser) parseCreate() (Statement, error) {
	if err := p.expect("CREATE"); err != nil {
		return nil, err
	}
	if p.accept("VIEW") {
		return p.parseCreateView()
	}

	ct := &CreateTableStmt{External: p.accept("EXTERNAL")}
	if err := p.expect("TABLE"); err != nil {
		return nil, err
	}
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	ct.IfNotExists = ifNotExists

	if ct.TableName, err = p.ident(); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}

	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		typTok := p.peek()
		if typTok.Kind != TokIdent {
			return nil, p.unexpected()
		}
		p.next()
		typ, err := ParseDataType(typTok.Text)
		if err != nil {
			return nil, err
		}
		comment, err := p.parseComment()
		if err != nil {
			return nil, err
		}
		ct.Columns = append(ct.Columns, Column{Name: name, Type: typ, Comment: comment})

		if p.accept(")") {
			break
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}

	if ct.Comment, err = p.parseComment(); err != nil {
		return nil, err
	}
	return ct, nil
}

func (p *parser) parseCreateView() (Statement, error) {
	cv := &CreateViewStmt{}
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	cv.IfNotExists = ifNotExists

	if cv.ViewName, err = p.ident(); err != nil {
		return nil, err
	}
	if cv.Comment, err = p.parseComment(); err != nil {
		return nil, err
	}
	if err := p.expect("AS"); err != nil {
		return nil, err
	}

	start := p.peek().Pos
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	cv.Query = sel.(*SelectStmt)
	cv.QueryText = p.src[start:p.toks[p.pos-1].End]
	return cv, nil
}

func (p *parser) parseIfNotExists() (bool, error) {
	if !p.accept("IF") {
		return false, nil
	}
	if err := p.expect("NOT", "EXISTS"); err != nil {
		return false, err
	}
	return true, nil
}
