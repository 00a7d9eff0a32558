package sql

import "strconv"

// parseSelect parses:
//
//	SELECT item [, item ...] [FROM table] [WHERE cond [AND cond ...]]
//	  [ORDER BY col [ASC|DESC], ...] [LIMIT n]
//
// where item is *, a column or a literal, optionally followed by [AS] alias.
func (p *parser) parseSelect() (Statement, error) {
	if err := p.expect("SELECT"); err != nil {
		return nil, err
	}
	sel := &SelectStmt{Limit: -1}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		sel.Items = append(sel.Items, item)
		if !p.accept(",") {
			break
		}
	}

	if p.accept("FROM") {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		sel.TableName = name
	}

	if p.accept("WHERE") {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	if p.accept("ORDER") {
		if err := p.expect("BY"); err != nil {
			return nil, err
		}
		for {
			col, err := p.ident()
			if err != nil {
				return nil, err
			}
			item := OrderItem{Column: col}
			if p.accept("DESC") {
				item.Desc = true
			} else {
				p.accept("ASC")
			}
			sel.OrderBy = append(sel.OrderBy, item)
			if !p.accept(",") {
				break
			}
		}
	}

	if p.accept("LIMIT") {
		t := p.peek()
		n, err := strconv.Atoi(t.Text)
		if t.Kind != TokNumber || err != nil || n < 0 {
			return nil, p.unexpected()
		}
		p.next()
		sel.Limit = n
	}

	return sel, nil
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	var item SelectItem
	switch {
	case p.accept("*"):
		return SelectItem{Star: true}, nil
	case p.isLiteralStart():
		v, err := p.parseLiteral()
		if err != nil {
			return item, err
		}
		item.Literal = v
	default:
		name, err := p.ident()
		if err != nil {
			return item, err
		}
		item.Column = name
	}

	if p.accept("AS") {
		alias, err := p.ident()
		if err != nil {
			return item, err
		}
		item.Alias = alias
	} else if t := p.peek(); t.Kind == TokIdent && !isReserved(t.Text) {
		p.next()
		item.Alias = t.Text
	}
	return item, nil
}
