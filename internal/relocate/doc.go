// Package relocate implements build-output relocation and configuration
// ordering for a multi-project build tree.
//
// The core computation is two deterministic formulas:
//
//	rootOutputDir       = parent(rootPath) / "build"
//	subprojectOutputDir = rootOutputDir / subprojectName
//
// The root output directory is computed once into an immutable RootOutputDir
// value and passed explicitly to every subproject computation; there is no
// shared mutable "root build directory".
//
// Evaluation order is modelled as a directed acyclic graph (Graph). Edges
// are declared with EnforceEvaluationOrder and checked for cycles eagerly.
// Order produces a deterministic topological order, and an Evaluator tracks
// which subprojects have completed configuration, rejecting any attempt to
// configure a subproject before its dependencies.
//
// Relocator.Plan ties it together and produces a model.Layout. All failures
// are configuration-time errors that abort the whole plan; nothing is
// retried and no partial layout is returned.
package relocate
