package evaluator

import (
	"fmt"

	"github.com/SuperCuber/pilang/pkg/pilang/ast"
	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// Interpreter runs commands against a stack of frames. The bottom frame
// is the session root; every frame above it was opened by a descend and
// is closed again by an ascend, which turns the commands run inside it
// into a lazy per-element replay over the parent container.
type Interpreter struct {
	frames []*frame
}

// frame is one level of the navigation stack. kind is empty for closed
// frames and "list" or "dict" for frames opened by a descend.
type frame struct {
	kind      string
	keyName   string // dict frames: names bound at descend
	valueName string

	initial Object
	scope   *Scope
	records []*record
}

// record is one executed command and its cached result. Exactly one of
// simple and group is set: simple for an expression command, group for a
// completed descend/ascend cycle.
type record struct {
	simple *ast.ExpressionCommand
	group  *groupRecord
	result Object
}

// groupRecord captures a closed descend/ascend cycle: everything needed
// to replay its commands against each element of the container, and the
// frame state needed to reopen it on undo.
type groupRecord struct {
	kind      string
	keyName   string
	valueName string
	records   []*record

	// keyed ascend expressions, both nil for a plain ascend
	keyExpr   ast.Expression
	valueExpr ast.Expression

	// state of the open frame at the moment it was closed
	entryInitial Object
	entryScope   *Scope
}

// New creates an interpreter whose root value is the given input text
func New(input string) *Interpreter {
	return &Interpreter{
		frames: []*frame{{
			initial: &String{Value: input},
			scope:   NewScope(),
		}},
	}
}

func (i *Interpreter) top() *frame {
	return i.frames[len(i.frames)-1]
}

// Value returns the current value: the result of the last command run in
// the current frame, or the frame's initial value when nothing ran yet
func (i *Interpreter) Value() Object {
	return i.top().value()
}

func (f *frame) value() Object {
	if n := len(f.records); n > 0 {
		return f.records[n-1].result
	}
	return f.initial
}

// Scope returns the current frame's scope
func (i *Interpreter) Scope() *Scope {
	return i.top().scope
}

// SetLogger routes log() output for this session. Call it before running
// commands; frames opened later inherit the scope it was set on.
func (i *Interpreter) SetLogger(logger Logger) {
	i.frames[0].scope.Logger = logger
}

// SetLocale sets the default locale for datefmt and numfmt
func (i *Interpreter) SetLocale(locale string) {
	i.frames[0].scope.Locale = locale
}

// Depth returns how many frames are open
func (i *Interpreter) Depth() int {
	return len(i.frames) - 1
}

// Status describes the open frames, outermost first. List frames render
// as "list", dict frames as "dict (k: v)" with their bound names.
func (i *Interpreter) Status() []string {
	var result []string
	for _, f := range i.frames[1:] {
		if f.kind == "dict" {
			result = append(result, fmt.Sprintf("%s (%s: %s)", f.kind, f.keyName, f.valueName))
		} else {
			result = append(result, f.kind)
		}
	}
	return result
}

// Run executes one command. A failed command leaves the interpreter
// exactly as it was.
func (i *Interpreter) Run(cmd ast.Command) *perrors.PiError {
	switch cmd := cmd.(type) {
	case *ast.ExpressionCommand:
		result, err := Eval(i.Scope(), i.Value(), cmd.Expression)
		if err != nil {
			return err
		}
		f := i.top()
		f.records = append(f.records, &record{simple: cmd, result: result})
		return nil

	case *ast.ShiftRight:
		return i.shiftRight(cmd)

	case *ast.ShiftLeft:
		return i.shiftLeft(cmd)
	}

	return perrors.NewSimple(perrors.ClassParse, fmt.Sprintf("unknown command %T", cmd))
}

// shiftRight descends into the current container, opening a frame on its
// first element. For dicts the element's key and value are bound in the
// new frame's scope and the value starts as null.
func (i *Interpreter) shiftRight(cmd *ast.ShiftRight) *perrors.PiError {
	this := i.Value()
	scope := i.Scope()

	switch container := this.(type) {
	case *List:
		if cmd.Key != nil {
			return perrors.New("NAV-0003", nil)
		}
		first, ok, err := container.First()
		if err != nil {
			return err
		}
		if !ok {
			return perrors.New("NAV-0001", nil)
		}
		i.frames = append(i.frames, &frame{
			kind:    "list",
			initial: first,
			scope:   scope,
		})
		return nil

	case *Dict:
		keyName, valueName := "k", "v"
		if cmd.Key != nil {
			keyName, valueName = cmd.Key.Value, cmd.Value.Value
		}
		first, ok, err := container.First()
		if err != nil {
			return err
		}
		if !ok {
			return perrors.New("NAV-0001", nil)
		}
		i.frames = append(i.frames, &frame{
			kind:      "dict",
			keyName:   keyName,
			valueName: valueName,
			initial:   NULL,
			scope: scope.
				Bind(keyName, &String{Value: first.Key}).
				Bind(valueName, first.Value),
		})
		return nil
	}

	return perrors.New("TYPE-0002", map[string]any{"Expected": "[list, dict]"})
}

// shiftLeft closes the current frame. The commands recorded inside it
// become a lazy replay over every element of the parent container; the
// replay stream is the pending tail of the result, so elements are only
// processed as the result is realized.
func (i *Interpreter) shiftLeft(cmd *ast.ShiftLeft) *perrors.PiError {
	if len(i.frames) < 2 {
		return perrors.New("NAV-0002", nil)
	}

	open := i.top()
	parent := i.frames[len(i.frames)-2]

	// the frame previewed one element; the replay walks the whole container
	container := parent.value()
	switch container.(type) {
	case *List, *Dict:
	default:
		panic(fmt.Sprintf("open frame over non-container %s", TypeName(container)))
	}

	group := &groupRecord{
		kind:         open.kind,
		keyName:      open.keyName,
		valueName:    open.valueName,
		records:      open.records,
		keyExpr:      cmd.KeyExpr,
		valueExpr:    cmd.ValueExpr,
		entryInitial: open.initial,
		entryScope:   open.scope,
	}

	var result Object
	if cmd.KeyExpr != nil {
		result = &Dict{
			Entries: make(map[string]Object),
			Pending: &replayPairStream{container: container, group: group},
		}
	} else {
		result = &List{
			Pending: &replayStream{container: container, group: group},
		}
	}

	parent.records = append(parent.records, &record{group: group, result: result})
	i.frames = i.frames[:len(i.frames)-1]
	return nil
}

// Undo removes the last command of the current frame. Undoing an ascend
// reopens the frame it closed, discarding the lazy result; undoing a
// descend closes the frame it opened. Undo on an empty root does nothing.
func (i *Interpreter) Undo() {
	f := i.top()

	if len(f.records) == 0 {
		if len(i.frames) > 1 {
			i.frames = i.frames[:len(i.frames)-1]
		}
		return
	}

	last := f.records[len(f.records)-1]
	f.records = f.records[:len(f.records)-1]

	if last.group != nil {
		g := last.group
		i.frames = append(i.frames, &frame{
			kind:      g.kind,
			keyName:   g.keyName,
			valueName: g.valueName,
			initial:   g.entryInitial,
			scope:     g.entryScope,
			records:   g.records,
		})
	}
}

// rerun re-executes a recorded command, recording it afresh. Groups are
// replayed as their full descend, inner commands, ascend sequence.
func (i *Interpreter) rerun(rec *record) *perrors.PiError {
	if rec.simple != nil {
		return i.Run(rec.simple)
	}

	g := rec.group
	enter := &ast.ShiftRight{}
	if g.kind == "dict" {
		enter.Key = &ast.Identifier{Value: g.keyName}
		enter.Value = &ast.Identifier{Value: g.valueName}
	}
	if err := i.Run(enter); err != nil {
		return err
	}
	for _, inner := range g.records {
		if err := i.rerun(inner); err != nil {
			return err
		}
	}
	return i.Run(&ast.ShiftLeft{KeyExpr: g.keyExpr, ValueExpr: g.valueExpr})
}

// replayElement runs the group's recorded commands against one element
// in a fresh single-frame interpreter and returns its final value and
// scope. Dict elements arrive as [key, value] pairs and have the frame's
// key and value names rebound before the commands run.
func (g *groupRecord) replayElement(element Object) (Object, *Scope, *perrors.PiError) {
	scope := g.entryScope
	if g.kind == "dict" {
		pair, ok := element.(*List)
		if !ok || len(pair.Elements) != 2 {
			panic("dict replay element is not a pair")
		}
		scope = scope.
			Bind(g.keyName, pair.Elements[0]).
			Bind(g.valueName, pair.Elements[1])
	}

	sub := &Interpreter{frames: []*frame{{initial: element, scope: scope}}}
	for _, rec := range g.records {
		if err := sub.rerun(rec); err != nil {
			return nil, nil, err
		}
	}
	return sub.Value(), sub.Scope(), nil
}

// groupElementAt returns the container element to replay at index. Dict
// entries are shaped into [key, value] lists so every replay sees one
// value per element.
func groupElementAt(container Object, index int) (Object, bool, *perrors.PiError) {
	switch c := container.(type) {
	case *List:
		return c.ElementAt(index)
	case *Dict:
		pair, ok, err := c.PairAt(index)
		if err != nil || !ok {
			return nil, ok, err
		}
		element := &List{Elements: []Object{&String{Value: pair.Key}, pair.Value}}
		return element, true, nil
	}
	panic(fmt.Sprintf("replay over non-container %s", TypeName(container)))
}

// replayStream feeds a plain ascend: element i of the result is the
// replay of the recorded commands against element i of the container.
// The index only advances on success, so a failed pull can be retried.
type replayStream struct {
	container Object
	group     *groupRecord
	index     int
}

func (r *replayStream) Next() (Object, bool, *perrors.PiError) {
	element, ok, err := groupElementAt(r.container, r.index)
	if err != nil || !ok {
		return nil, ok, err
	}

	value, _, err := r.group.replayElement(element)
	if err != nil {
		return nil, false, err
	}

	r.index++
	return value, true, nil
}

// replayPairStream feeds a keyed ascend: after each element's replay the
// key and value expressions are evaluated against the replayed value and
// scope. Keys must come out as strings.
type replayPairStream struct {
	container Object
	group     *groupRecord
	index     int
}

func (r *replayPairStream) Next() (Pair, bool, *perrors.PiError) {
	element, ok, err := groupElementAt(r.container, r.index)
	if err != nil || !ok {
		return Pair{}, ok, err
	}

	value, scope, err := r.group.replayElement(element)
	if err != nil {
		return Pair{}, false, err
	}

	keyObj, err := Eval(scope, value, r.group.keyExpr)
	if err != nil {
		return Pair{}, false, err
	}
	key, isString := keyObj.(*String)
	if !isString {
		return Pair{}, false, perrors.New("TYPE-0001", map[string]any{"Expected": "string"})
	}

	valueObj, err := Eval(scope, value, r.group.valueExpr)
	if err != nil {
		return Pair{}, false, err
	}

	r.index++
	return Pair{Key: key.Value, Value: valueObj}, true, nil
}
