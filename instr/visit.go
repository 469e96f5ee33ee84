package instr

// VisitFuncIndices calls fn once for every function-index immediate
// reachable from expr (call and ref.func operands), walking nested block,
// loop and if bodies with an explicit stack rather than recursion, for the
// same reason decode and encode do. fn may mutate the index in place; the
// walk revisits the slice it was given, so edits are reflected immediately.
//
// Grounded on the renumbering pass in
// _examples/original_source/src/instrument.rs, which walks every function
// body once to shift call/ref.func targets after inserting the hook
// imports and the cloned function bodies.
func VisitFuncIndices(expr Expression, fn func(idx *uint32)) {
	stack := []Expression{expr}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range cur {
			ins := &cur[i]
			switch ins.Op {
			case OpCall, OpRefFunc:
				fn(&ins.FuncIdx)
			case OpBlock, OpLoop, OpIf:
				stack = append(stack, ins.Then)
				if ins.HasElse {
					stack = append(stack, ins.Else)
				}
			}
		}
	}
}
