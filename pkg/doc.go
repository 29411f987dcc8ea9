// Package pkg provides the core libraries for pedigree graph visualization.
//
// # Overview
//
// Pedigree takes a flat list of individual records, each naming at most one
// dam and one sire, and builds the ancestry graph of one chosen root: every
// ancestor above it and the descendants of its line, with offspring that have
// no children of their own collapsed into group nodes. The result is laid out
// by generation and handed to a rendering surface as a scene of styled nodes
// and edges. Selecting an individual highlights its parents without
// rebuilding anything.
//
// # Architecture
//
// The data flow for one view:
//
//	record.Store (file, SQL, MongoDB, memory)
//	         ↓
//	    [lineage] LineageBuilder → GenerationResolver → OffspringAggregator
//	         ↓
//	    [layout] position cache + generation rows
//	         ↓
//	    [render] GraphAssembler (labels, colors, selection emphasis)
//	         ↓
//	    Scene JSON, DOT, SVG, PDF, PNG
//
// [pipeline.Engine] owns that flow for one view and recomputes only what an
// input change invalidates. [pipeline.Runner] connects engines to a record
// store and a [cache.Cache].
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/pedigree/pkg/pipeline"
//	    "github.com/matzehuels/pedigree/pkg/record"
//	    "github.com/matzehuels/pedigree/pkg/selection"
//	)
//
//	e, _ := pipeline.NewEngine[record.Attributes](pipeline.Options{})
//	e.SetRecords(records)
//	e.SetRoot("A")
//	scene := e.Scene()
//
//	e.NodeClicked("A", selection.TypeIndividual)
//	scene = e.Scene() // re-assembled, not rebuilt
//
// # Packages
//
//   - [record]: the Record type, the Store interface and its backends
//   - [dag]: the directed graph the lineage is built on
//   - [lineage]: lineage discovery, generations and offspring groups
//   - [layout]: generation-row layout and the position cache
//   - [selection]: the selection state machine
//   - [render]: scene assembly and styling; [render/nodelink] for DOT and Graphviz
//   - [pipeline]: Engine and Runner
//   - [graph]: record, scene, label and position files
//   - [cache]: file and Redis caches for positions and artifacts
//   - [session]: API session registry
//   - [httputil]: JSON and status helpers for the API
//   - [observability]: hooks and the Prometheus adapter
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version information
//
// [record]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/record
// [dag]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/dag
// [lineage]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/lineage
// [layout]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/layout
// [selection]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/selection
// [render]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/pipeline
// [pipeline.Engine]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/pipeline#Engine
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/pipeline#Runner
// [graph]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/cache
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/cache#Cache
// [session]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pedigree/pkg/buildinfo
package pkg
