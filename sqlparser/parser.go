package sqlparser

import "strings"

// Parser is a recursive-descent parser over a one-token lookahead stream.
type Parser struct {
	lexer   *Lexer
	current Token
	peeked  *Token
}

// NewParser creates a Parser over input. Call Parse to produce a Stmt.
func NewParser(input string) *Parser {
	return &Parser{lexer: NewLexer(input)}
}

// Parse parses exactly one statement (an optional trailing ';' is allowed)
// and returns its AST root.
func Parse(input string) (Stmt, error) {
	return NewParser(input).Parse()
}

func (p *Parser) Parse() (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.current.Kind == SEMICOLON {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.current.Kind != EOF {
		return nil, &ParseError{Expected: "end of statement", Got: p.current}
	}
	return stmt, nil
}

func (p *Parser) advance() error {
	if p.peeked != nil {
		p.current = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) peek() (Token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		return Token{}, err
	}
	p.peeked = &tok
	return tok, nil
}

func (p *Parser) expect(k Kind) (Token, error) {
	if p.current.Kind != k {
		return Token{}, &ParseError{Expected: k.String(), Got: p.current}
	}
	tok := p.current
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.current.Kind {
	case WITH, SELECT:
		return p.parseSelect()
	case INSERT:
		return p.parseInsert()
	case UPDATE:
		return p.parseUpdate()
	case DELETE:
		return p.parseDelete()
	case CREATE:
		return p.parseCreate()
	default:
		return nil, &ParseError{Expected: "statement", Got: p.current}
	}
}

// ---- SELECT ----

func (p *Parser) parseSelect() (*SelectStmt, error) {
	stmt := &SelectStmt{}

	if p.current.Kind == WITH {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Kind == RECURSIVE {
			stmt.Recursive = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		for {
			cte, err := p.parseCTE()
			if err != nil {
				return nil, err
			}
			stmt.With = append(stmt.With, cte)
			if p.current.Kind != COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(SELECT); err != nil {
		return nil, err
	}

	if p.current.Kind == DISTINCT {
		stmt.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else if p.current.Kind == ALL {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = items

	if p.current.Kind == FROM {
		if err := p.advance(); err != nil {
			return nil, err
		}
		from, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.From = from

		for isJoinStart(p.current.Kind) {
			j, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			stmt.Joins = append(stmt.Joins, j)
		}
	}

	if p.current.Kind == WHERE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	if p.current.Kind == GROUP {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(BY); err != nil {
			return nil, err
		}
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = list
	}

	if p.current.Kind == HAVING {
		if err := p.advance(); err != nil {
			return nil, err
		}
		h, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = h
	}

	if p.current.Kind == ORDER {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(BY); err != nil {
			return nil, err
		}
		list, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = list
	}

	if p.current.Kind == LIMIT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.expect(NUMBER)
		if err != nil {
			return nil, err
		}
		stmt.Limit = &Literal{Kind: NUMBER, Value: n.Value}
	}

	if p.current.Kind == OFFSET {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.expect(NUMBER)
		if err != nil {
			return nil, err
		}
		stmt.Offset = &Literal{Kind: NUMBER, Value: n.Value}
	}

	// UNION [ALL] select is accepted but folded away: only the first arm is
	// kept, since the AST has no UnionStmt node (spec's grammar does not
	// define one; SelectStmt models a single SELECT).
	for p.current.Kind == UNION {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Kind == ALL {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if _, err := p.parseSelect(); err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func (p *Parser) parseCTE() (CTE, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return CTE{}, err
	}
	cte := CTE{Name: name.Value}

	if p.current.Kind == LPAREN {
		if err := p.advance(); err != nil {
			return CTE{}, err
		}
		for {
			col, err := p.expect(IDENT)
			if err != nil {
				return CTE{}, err
			}
			cte.Columns = append(cte.Columns, col.Value)
			if p.current.Kind != COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return CTE{}, err
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return CTE{}, err
		}
	}

	if _, err := p.expect(AS); err != nil {
		return CTE{}, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return CTE{}, err
	}
	sel, err := p.parseSelect()
	if err != nil {
		return CTE{}, err
	}
	cte.Select = sel
	if _, err := p.expect(RPAREN); err != nil {
		return CTE{}, err
	}
	return cte, nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		if p.current.Kind == STAR {
			if err := p.advance(); err != nil {
				return nil, err
			}
			items = append(items, SelectItem{Expr: &Ident{Name: "*"}})
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item := SelectItem{Expr: e}
			if p.current.Kind == AS {
				if err := p.advance(); err != nil {
					return nil, err
				}
				alias, err := p.expect(IDENT)
				if err != nil {
					return nil, err
				}
				item.Alias = alias.Value
			} else if p.current.Kind == IDENT {
				item.Alias = p.current.Value
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			items = append(items, item)
		}
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Parser) parseTableRef() (*TableRef, error) {
	if p.current.Kind == LPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		ref := &TableRef{Subject: sel}
		if err := p.parseOptionalAlias(&ref.Alias); err != nil {
			return nil, err
		}
		return ref, nil
	}

	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	ref := &TableRef{Name: name.Value}
	if err := p.parseOptionalAlias(&ref.Alias); err != nil {
		return nil, err
	}
	return ref, nil
}

func (p *Parser) parseOptionalAlias(alias *string) error {
	if p.current.Kind == AS {
		if err := p.advance(); err != nil {
			return err
		}
		tok, err := p.expect(IDENT)
		if err != nil {
			return err
		}
		*alias = tok.Value
		return nil
	}
	if p.current.Kind == IDENT {
		*alias = p.current.Value
		return p.advance()
	}
	return nil
}

func isJoinStart(k Kind) bool {
	switch k {
	case JOIN, INNER, LEFT, RIGHT, FULL, CROSS:
		return true
	default:
		return false
	}
}

func (p *Parser) parseJoin() (Join, error) {
	j := Join{Kind: INNER}
	switch p.current.Kind {
	case INNER:
		if err := p.advance(); err != nil {
			return Join{}, err
		}
	case LEFT, RIGHT, FULL:
		j.Kind = p.current.Kind
		if err := p.advance(); err != nil {
			return Join{}, err
		}
		if p.current.Kind == OUTER {
			j.Outer = true
			if err := p.advance(); err != nil {
				return Join{}, err
			}
		}
	case CROSS:
		j.Kind = CROSS
		if err := p.advance(); err != nil {
			return Join{}, err
		}
	}

	if _, err := p.expect(JOIN); err != nil {
		return Join{}, err
	}
	ref, err := p.parseTableRef()
	if err != nil {
		return Join{}, err
	}
	j.Table = *ref

	if j.Kind != CROSS {
		if _, err := p.expect(ON); err != nil {
			return Join{}, err
		}
		on, err := p.parseExpr()
		if err != nil {
			return Join{}, err
		}
		j.On = on
	}
	return j, nil
}

func (p *Parser) parseExprList() ([]Expr, error) {
	var list []Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (p *Parser) parseOrderList() ([]OrderItem, error) {
	var list []OrderItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := OrderItem{Expr: e}
		switch p.current.Kind {
		case ASC:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case DESC:
			item.Desc = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		list = append(list, item)
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ---- expr := or ----

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == OR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == AND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.current.Kind == NOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: NOT, Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[Kind]bool{
	EQ: true, NEQ: true, LT: true, LE: true, GT: true, GE: true, LIKE: true,
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case comparisonOps[p.current.Kind]:
			op := p.current.Kind
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: op, Left: left, Right: right}
		case p.current.Kind == IN:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(LPAREN); err != nil {
				return nil, err
			}
			call := &CallExpr{Name: "IN", Args: []Expr{left}}
			if p.current.Kind == SELECT {
				sub, err := p.parseSelect()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, &SubqueryExpr{Select: sub})
			} else {
				vals, err := p.parseExprList()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, vals...)
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			left = call
		case p.current.Kind == BETWEEN:
			if err := p.advance(); err != nil {
				return nil, err
			}
			lo, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(AND); err != nil {
				return nil, err
			}
			hi, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &CallExpr{Name: "BETWEEN", Args: []Expr{left, lo, hi}}
		case p.current.Kind == IS:
			if err := p.advance(); err != nil {
				return nil, err
			}
			negate := false
			if p.current.Kind == NOT {
				negate = true
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(NULL); err != nil {
				return nil, err
			}
			e := Expr(&CallExpr{Name: "IS_NULL", Args: []Expr{left}})
			if negate {
				e = &UnaryExpr{Op: NOT, Operand: e}
			}
			left = e
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == PLUS || p.current.Kind == MINUS {
		op := p.current.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == STAR || p.current.Kind == SLASH || p.current.Kind == PERCENT {
		op := p.current.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.current.Kind == PLUS || p.current.Kind == MINUS {
		op := p.current.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.current.Kind {
	case NUMBER:
		v := p.current.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Kind: NUMBER, Value: v}, nil
	case STRING:
		v := p.current.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Kind: STRING, Value: v}, nil
	case NULL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Kind: NULL}, nil
	case CASE:
		return p.parseCase()
	case EXISTS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &CallExpr{Name: "EXISTS", Args: []Expr{&SubqueryExpr{Select: sub}}}, nil
	case LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Kind == SELECT || p.current.Kind == WITH {
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			return &SubqueryExpr{Select: sub}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case IDENT:
		return p.parseIdentOrCall()
	default:
		return nil, &ParseError{Expected: "expression", Got: p.current}
	}
}

func (p *Parser) parseCase() (Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	c := &CaseExpr{}
	if p.current.Kind != WHEN {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}
	for p.current.Kind == WHEN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(THEN); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, WhenClause{Cond: cond, Result: result})
	}
	if p.current.Kind == ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if _, err := p.expect(END); err != nil {
		return nil, err
	}
	return c, nil
}

// parseIdentOrCall parses a column reference "name" or "q.name", or a
// function call "name(args)".
func (p *Parser) parseIdentOrCall() (Expr, error) {
	first := p.current.Value
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.current.Kind == DOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var name string
		if p.current.Kind == STAR {
			name = "*"
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			tok, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			name = tok.Value
		}
		return &Ident{Qualifier: first, Name: name}, nil
	}

	if p.current.Kind == LPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		call := &CallExpr{Name: strings.ToUpper(first)}
		if p.current.Kind != RPAREN {
			if p.current.Kind == STAR {
				call.Args = append(call.Args, &Ident{Name: "*"})
				if err := p.advance(); err != nil {
					return nil, err
				}
			} else {
				args, err := p.parseExprList()
				if err != nil {
					return nil, err
				}
				call.Args = args
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return call, nil
	}

	return &Ident{Name: first}, nil
}

// ---- INSERT / UPDATE / DELETE / CREATE TABLE / CREATE INDEX ----

func (p *Parser) parseInsert() (*InsertStmt, error) {
	if _, err := p.expect(INSERT); err != nil {
		return nil, err
	}
	if _, err := p.expect(INTO); err != nil {
		return nil, err
	}
	table, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{Table: table.Value}

	if p.current.Kind == LPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			col, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col.Value)
			if p.current.Kind != COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(VALUES); err != nil {
		return nil, err
	}
	for {
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		row, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	if _, err := p.expect(UPDATE); err != nil {
		return nil, err
	}
	table, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &UpdateStmt{Table: table.Value}

	if _, err := p.expect(SET); err != nil {
		return nil, err
	}
	for {
		col, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, Assignment{Column: col.Value, Value: val})
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.current.Kind == WHERE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}

func (p *Parser) parseDelete() (*DeleteStmt, error) {
	if _, err := p.expect(DELETE); err != nil {
		return nil, err
	}
	if _, err := p.expect(FROM); err != nil {
		return nil, err
	}
	table, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &DeleteStmt{Table: table.Value}

	if p.current.Kind == WHERE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}

func (p *Parser) parseCreate() (Stmt, error) {
	if err := p.advance(); err != nil { // consume CREATE
		return nil, err
	}
	unique := false
	if p.current.Kind == UNIQUE {
		unique = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	switch p.current.Kind {
	case TABLE:
		return p.parseCreateTable()
	case INDEX:
		return p.parseCreateIndex(unique)
	default:
		return nil, &ParseError{Expected: "TABLE or INDEX", Got: p.current}
	}
}

func (p *Parser) parseIfNotExists() (bool, error) {
	if p.current.Kind != IF {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	if _, err := p.expect(NOT); err != nil {
		return false, err
	}
	if _, err := p.expect(EXISTS); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	if _, err := p.expect(TABLE); err != nil {
		return nil, err
	}
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &CreateTableStmt{Table: name.Value, IfNotExists: ifNotExists}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	for {
		if isTableConstraintStart(p.current.Kind) {
			c, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			stmt.Constraints = append(stmt.Constraints, c)
		} else {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
		}
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return stmt, nil
}

func isTableConstraintStart(k Kind) bool {
	switch k {
	case PRIMARY, UNIQUE, CHECK, FOREIGN, CONSTRAINT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseColumnList() ([]string, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var cols []string
	for {
		c, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.Value)
		if p.current.Kind != COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cols, nil
}

func (p *Parser) parseTableConstraint() (TableConstraint, error) {
	if p.current.Kind == CONSTRAINT {
		if err := p.advance(); err != nil {
			return TableConstraint{}, err
		}
		if _, err := p.expect(IDENT); err != nil {
			return TableConstraint{}, err
		}
	}

	switch p.current.Kind {
	case PRIMARY:
		if err := p.advance(); err != nil {
			return TableConstraint{}, err
		}
		if _, err := p.expect(KEY); err != nil {
			return TableConstraint{}, err
		}
		cols, err := p.parseColumnList()
		if err != nil {
			return TableConstraint{}, err
		}
		return TableConstraint{Kind: PRIMARY, Columns: cols}, nil
	case UNIQUE:
		if err := p.advance(); err != nil {
			return TableConstraint{}, err
		}
		cols, err := p.parseColumnList()
		if err != nil {
			return TableConstraint{}, err
		}
		return TableConstraint{Kind: UNIQUE, Columns: cols}, nil
	case CHECK:
		if err := p.advance(); err != nil {
			return TableConstraint{}, err
		}
		if _, err := p.expect(LPAREN); err != nil {
			return TableConstraint{}, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return TableConstraint{}, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return TableConstraint{}, err
		}
		return TableConstraint{Kind: CHECK, Check: e}, nil
	case FOREIGN:
		if err := p.advance(); err != nil {
			return TableConstraint{}, err
		}
		if _, err := p.expect(KEY); err != nil {
			return TableConstraint{}, err
		}
		cols, err := p.parseColumnList()
		if err != nil {
			return TableConstraint{}, err
		}
		ref, err := p.parseReferences()
		if err != nil {
			return TableConstraint{}, err
		}
		return TableConstraint{Kind: FOREIGN, Columns: cols, References: ref}, nil
	default:
		return TableConstraint{}, &ParseError{Expected: "table constraint", Got: p.current}
	}
}

func (p *Parser) parseReferences() (string, error) {
	if _, err := p.expect(REFERENCES); err != nil {
		return "", err
	}
	table, err := p.expect(IDENT)
	if err != nil {
		return "", err
	}
	ref := table.Value
	if p.current.Kind == LPAREN {
		cols, err := p.parseColumnList()
		if err != nil {
			return "", err
		}
		ref += "(" + strings.Join(cols, ",") + ")"
	}
	return ref, nil
}

func (p *Parser) parseColumnDef() (ColumnDef, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return ColumnDef{}, err
	}
	typeTok, err := p.expect(IDENT)
	if err != nil {
		return ColumnDef{}, err
	}
	col := ColumnDef{Name: name.Value, Type: typeTok.Value}

	for {
		switch p.current.Kind {
		case PRIMARY:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			if _, err := p.expect(KEY); err != nil {
				return ColumnDef{}, err
			}
			col.PrimaryKey = true
		case NOT:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			if _, err := p.expect(NULL); err != nil {
				return ColumnDef{}, err
			}
			col.NotNull = true
		case UNIQUE:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			col.Unique = true
		case DEFAULT:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			v, err := p.parseUnary()
			if err != nil {
				return ColumnDef{}, err
			}
			col.Default = v
		case REFERENCES:
			ref, err := p.parseReferences()
			if err != nil {
				return ColumnDef{}, err
			}
			col.References = ref
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseCreateIndex(unique bool) (*CreateIndexStmt, error) {
	if _, err := p.expect(INDEX); err != nil {
		return nil, err
	}
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ON); err != nil {
		return nil, err
	}
	table, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	cols, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}
	return &CreateIndexStmt{Index: name.Value, Table: table.Value, Columns: cols, Unique: unique, IfNotExists: ifNotExists}, nil
}
