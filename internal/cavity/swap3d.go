package cavity

import (
	"math"

	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/quality"
)

// edgeLink3D walks the ring of tets sharing edge e and returns the edge's
// two endpoints and the cyclic sequence of "equator" vertices, ordered so
// that consecutive link vertices (wrapping around) are exactly the
// vertices of one original tet together with a,b. Returns ok=false if the
// ring could not be closed into a simple cycle (a non-manifold or boundary
// edge, which this operator leaves untouched).
func edgeLink3D(mesh *meshmodel.Mesh, e int) (a, b int32, link []int32, ok bool) {
	edgeVerts := mesh.AskDown(meshmodel.Edge, meshmodel.Vert)
	ev := edgeVerts.Targets(e)
	a, b = ev[0], ev[1]

	cellVerts := mesh.AskDown(meshmodel.Cell3D, meshmodel.Vert)
	cells := mesh.AskUp(meshmodel.Edge, meshmodel.Cell3D).Targets(e)
	n := len(cells)
	if n < 3 {
		return a, b, nil, false
	}

	pairOf := make(map[int32][2]int32, n)
	vertCells := map[int32][]int32{}
	for _, c := range cells {
		verts := cellVerts.Targets(int(c))
		var pq [2]int32
		i := 0
		for _, v := range verts {
			if v == a || v == b {
				continue
			}
			if i > 1 {
				return a, b, nil, false
			}
			pq[i] = v
			i++
		}
		if i != 2 {
			return a, b, nil, false
		}
		pairOf[c] = pq
		vertCells[pq[0]] = append(vertCells[pq[0]], c)
		vertCells[pq[1]] = append(vertCells[pq[1]], c)
	}

	start := cells[0]
	pq := pairOf[start]
	link = []int32{pq[0], pq[1]}
	visited := map[int32]bool{start: true}
	last := pq[1]
	for len(visited) < n {
		found := false
		for _, c := range vertCells[last] {
			if visited[c] {
				continue
			}
			cpq := pairOf[c]
			var next int32
			if cpq[0] == last {
				next = cpq[1]
			} else if cpq[1] == last {
				next = cpq[0]
			} else {
				continue
			}
			link = append(link, next)
			visited[c] = true
			last = next
			found = true
			break
		}
		if !found {
			return a, b, nil, false
		}
	}
	// Visiting the last cell of a closed ring brings the walk back to link[0].
	if len(link) != n+1 || link[n] != link[0] {
		return a, b, nil, false
	}
	return a, b, link[:n], true
}

func tetQualityMetric(mesh *meshmodel.Mesh, vertMetrics []float64, verts [4]int32) float64 {
	w := symDofs(3)
	coords := mesh.Coords()
	var p [4][3]float64
	var m [4][]float64
	for i, v := range verts {
		x := coords[int(v)*3 : int(v)*3+3]
		p[i] = [3]float64{x[0], x[1], x[2]}
		m[i] = vertMetric(vertMetrics, w, int(v))
	}
	return quality.TetQualityMetric(p, m)
}

// swapTriangle is one triangle (link[lo], link[mid], link[hi]) of a
// Klincsek retriangulation.
type swapTriangle struct{ lo, mid, hi int }

// klincsek runs a Klincsek-style interval DP over the open
// chain link[0..n-1]: dp[i][j] is the best worst-case quality achievable
// triangulating the sub-polygon bounded by link[i] and link[j], where each
// candidate split vertex k contributes two tets (one with apex a, one with
// apex b). choice[i][j] records the winning k for reconstruction.
func klincsek(mesh *meshmodel.Mesh, vertMetrics []float64, a, b int32, link []int32) ([]swapTriangle, float64) {
	n := len(link)
	dp := make([][]float64, n)
	choice := make([][]int, n)
	for i := range dp {
		dp[i] = make([]float64, n)
		choice[i] = make([]int, n)
		for j := range dp[i] {
			dp[i][j] = math.Inf(1)
		}
	}
	for length := 2; length < n; length++ {
		for i := 0; i+length < n; i++ {
			j := i + length
			best := math.Inf(-1)
			bestK := -1
			for k := i + 1; k < j; k++ {
				qa := tetQualityMetric(mesh, vertMetrics, [4]int32{a, link[i], link[k], link[j]})
				qb := tetQualityMetric(mesh, vertMetrics, [4]int32{b, link[i], link[k], link[j]})
				local := math.Min(qa, qb)
				val := math.Min(local, math.Min(dp[i][k], dp[k][j]))
				if val > best {
					best = val
					bestK = k
				}
			}
			dp[i][j] = best
			choice[i][j] = bestK
		}
	}

	var triangles []swapTriangle
	var collect func(i, j int)
	collect = func(i, j int) {
		if j-i < 2 {
			return
		}
		k := choice[i][j]
		triangles = append(triangles, swapTriangle{lo: i, mid: k, hi: j})
		collect(i, k)
		collect(k, j)
	}
	collect(0, n-1)
	return triangles, dp[0][n-1]
}

// Swap3D retriangulates the link of every selected 3D edge using the
// Klincsek dynamic program, replacing the ring of tets sharing that edge
// with 2*(n-2) tets (one per link triangle for each of the two apexes a,b),
// provided the new worst-case quality strictly improves on both the old
// worst case and minQualityAllowed. fired reports
// whether at least one edge actually retriangulated, the adapt driver's
// pass-level "fired" contract.
func Swap3D(mesh *meshmodel.Mesh, vertMetrics []float64, candidateEdges []int, minQualityAllowed float64) (out *meshmodel.Mesh, fired bool) {
	cellVerts := mesh.AskDown(meshmodel.Cell3D, meshmodel.Vert)
	edgeCells := mesh.AskUp(meshmodel.Edge, meshmodel.Cell3D)
	ncells := mesh.NEnts(meshmodel.Cell3D)
	coords := mesh.Coords()

	dead := make([]bool, ncells)
	var extra [][]int32

	for _, e := range candidateEdges {
		a, b, link, ok := edgeLink3D(mesh, e)
		if !ok || len(link) < 3 {
			continue
		}
		cells := edgeCells.Targets(e)
		skip := false
		for _, c := range cells {
			if dead[int(c)] {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		oldMin := math.Inf(1)
		for _, c := range cells {
			verts := cellVerts.Targets(int(c))
			q := tetQualityMetric(mesh, vertMetrics, [4]int32{verts[0], verts[1], verts[2], verts[3]})
			if q < oldMin {
				oldMin = q
			}
		}

		triangles, newMin := klincsek(mesh, vertMetrics, a, b, link)
		if newMin <= oldMin || newMin <= minQualityAllowed {
			continue
		}

		for _, c := range cells {
			dead[int(c)] = true
		}
		fired = true
		for _, t := range triangles {
			extra = append(extra,
				[]int32{a, link[t.lo], link[t.mid], link[t.hi]},
				[]int32{b, link[t.lo], link[t.mid], link[t.hi]},
			)
		}
	}

	if !fired {
		return mesh, false
	}

	var newCellVerts [][]int32
	for c := 0; c < ncells; c++ {
		if dead[c] {
			continue
		}
		newCellVerts = append(newCellVerts, append([]int32(nil), cellVerts.Targets(c)...))
	}
	newCellVerts = append(newCellVerts, extra...)

	return meshmodel.New(3, coords, newCellVerts), true
}
