package syntaxtest

// Trees shaped like the output of the tree-sitter Erlang grammar, restricted
// to named nodes.

const ModuleSource = "-module(bah).\n-define(A, a).\nfoo(X) -> {?A, X + 1}."

const ModuleSexp = `(source_file
  forms: (module_attribute "-module(bah)." name: (atom "bah"))
  forms: (pp_define "-define(A, a)." lhs: (macro_lhs name: (var "A")) replacement: (atom "a"))
  forms: (fun_decl "foo(X) -> {?A, X + 1}."
    clauses: (function_clause name: (atom "foo") args: (expr_args "(X)" args: (var "X"))
      body: (clause_body exprs: (tuple "{?A, X + 1}"
        expr: (macro_call_expr "?A" name: (var "A"))
        expr: (binary_op_expr lhs: (var "X") rhs: (integer "1")))))))`

const CallsSource = "-module(bah).\n-define(A, a).\nfoo(X) ->\n  bah(1, x, 2),\n  bah(x, 2),\n  bah(1, x),\n  {?A, X + 1}."

const CallsSexp = `(source_file
  forms: (module_attribute "-module(bah)." name: (atom "bah"))
  forms: (pp_define "-define(A, a)." lhs: (macro_lhs name: (var "A")) replacement: (atom "a"))
  forms: (fun_decl
    clauses: (function_clause name: (atom "foo") args: (expr_args "(X)" args: (var "X"))
      body: (clause_body
        exprs: (call expr: (atom "bah") args: (expr_args "(1, x, 2)" args: (integer "1") args: (atom "x") args: (integer "2")))
        exprs: (call expr: (atom "bah") args: (expr_args "(x, 2)" args: (atom "x") args: (integer "2")))
        exprs: (call expr: (atom "bah") args: (expr_args "(1, x)" args: (integer "1") args: (atom "x")))
        exprs: (tuple "{?A, X + 1}"
          expr: (macro_call_expr "?A" name: (var "A"))
          expr: (binary_op_expr lhs: (var "X") rhs: (integer "1")))))))`
