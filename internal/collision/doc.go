// Package collision implements the narrow phase between two convex bodies.
//
// Two pipelines are available and a world uses exactly one of them:
//
//   - [PipelineGJK]: [GJK] decides overlap and leaves a simplex that [EPA]
//     expands into depth, normal and a contact pair. Disc pairs are answered
//     in closed form.
//   - [PipelineSAT]: [SAT] picks the minimum-penetration axis and [Clip]
//     turns the reference and incident edges into up to two contacts.
//
// Both feed [Manifold], whose normal always points from the first body toward
// the second.
//
// # Failure modes
//
// GJK reporting no overlap is an ordinary answer. EPA stops after
// [EPAMaxIterations] and then returns the closest edge it has, with
// Converged set to false.
package collision
