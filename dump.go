package geom3d

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// PrintData writes a plain text listing of the meshes, used to diff meshes that were
// produced from different inputs.
func PrintData(w io.Writer, ms MeshSet) error {
	bw := bufio.NewWriter(w)
	for mi, g := range ms {
		fmt.Fprintf(bw, "Geometry %d\n", mi)
		fmt.Fprintf(bw, "Codes fan:%d strip:%d list:%d\n", g.Codes.Fan, g.Codes.Strip, g.Codes.List)
		for _, c := range g.Comments {
			fmt.Fprintf(bw, "Comment: %s\n", c)
		}
		fmt.Fprintf(bw, "Verts %d\n", len(g.Verts))
		for i, v := range g.Verts {
			fmt.Fprintf(bw, "%d v(%g, %g, %g) t(%g, %g) n(%g, %g, %g)\n", i,
				v.Vert[0], v.Vert[1], v.Vert[2],
				v.Texture[0], v.Texture[1],
				v.Normal[0], v.Normal[1], v.Normal[2])
		}
		fmt.Fprintf(bw, "Indexes %d\n", len(g.Indexes))
		for _, grp := range g.Indexes {
			fmt.Fprintf(bw, "%s %d:", grp.Type, len(grp.Indexes))
			for _, i := range grp.Indexes {
				fmt.Fprintf(bw, " %d", i)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

func PrintDataToFile(ms MeshSet, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := PrintData(f, ms); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
