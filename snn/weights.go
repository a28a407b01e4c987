// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goki/ki/indent"
)

// NetWts is the weights file record of a network.
type NetWts struct {
	Network string
	Layers  []LayerWts
}

// LayerWts is the weights file record of one layer.
type LayerWts struct {
	Layer string
	Extra [][]float32
	Intra [][]float32
}

// SaveWtsJSON saves the network weights to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (nt *Network) SaveWtsJSON(filename string) error {
	fp, err := os.Create(filename)
	if err != nil {
		log.Println(err)
		return err
	}
	err = nt.writeWtsFile(fp, filepath.Ext(filename) == ".gz")
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Println(err)
	}
	return err
}

// writeWtsFile writes the weights, gzip compressed if gz. The gzip stream is
// only complete once its writer is closed, so a close error is a write error.
func (nt *Network) writeWtsFile(w io.Writer, gz bool) error {
	if !gz {
		return nt.WriteWtsJSON(w)
	}
	gzr := gzip.NewWriter(w)
	if err := nt.WriteWtsJSON(gzr); err != nil {
		gzr.Close()
		return err
	}
	return gzr.Close()
}

// WriteWtsJSON writes the weights of all layers in a JSON text format.
// The indentation is written directly, which is much faster than
// marshaling for large layers.
func (nt *Network) WriteWtsJSON(w io.Writer) error {
	ew := &errWriter{w: w}
	depth := 0
	ew.write(indent.TabBytes(depth), []byte("{\n"))
	depth++
	ew.write(indent.TabBytes(depth), []byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm)))
	ew.write(indent.TabBytes(depth), []byte("\"Layers\": [\n"))
	depth++
	nl := len(nt.Layers)
	for li, ly := range nt.Layers {
		ly.writeWtsJSON(ew, depth)
		if li == nl-1 {
			ew.write([]byte("\n"))
		} else {
			ew.write([]byte(",\n"))
		}
	}
	depth--
	ew.write(indent.TabBytes(depth), []byte("]\n"))
	depth--
	ew.write(indent.TabBytes(depth), []byte("}\n"))
	return ew.err
}

func (ly *Layer) writeWtsJSON(ew *errWriter, depth int) {
	ew.write(indent.TabBytes(depth), []byte("{\n"))
	depth++
	ew.write(indent.TabBytes(depth), []byte(fmt.Sprintf("\"Layer\": %q,\n", ly.Nm)))
	ew.write(indent.TabBytes(depth), []byte("\"Extra\": "))
	writeWtsRows(ew, ly.ExtraWts, depth)
	ew.write([]byte(",\n"))
	ew.write(indent.TabBytes(depth), []byte("\"Intra\": "))
	writeWtsRows(ew, ly.IntraWts, depth)
	ew.write([]byte("\n"))
	depth--
	ew.write(indent.TabBytes(depth), []byte("}"))
}

func writeWtsRows(ew *errWriter, wts [][]float32, depth int) {
	ew.write([]byte("[\n"))
	depth++
	for ri, row := range wts {
		ew.write(indent.TabBytes(depth), []byte("["))
		for ci, wt := range row {
			if ci > 0 {
				ew.write([]byte(", "))
			}
			ew.write([]byte(strconv.FormatFloat(float64(wt), 'g', -1, 32)))
		}
		if ri == len(wts)-1 {
			ew.write([]byte("]\n"))
		} else {
			ew.write([]byte("],\n"))
		}
	}
	depth--
	ew.write(indent.TabBytes(depth), []byte("]"))
}

// errWriter remembers the first write error and skips all later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(bs ...[]byte) {
	for _, b := range bs {
		if ew.err != nil {
			return
		}
		_, ew.err = ew.w.Write(b)
	}
}

// OpenWtsJSON opens network weights from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func OpenWtsJSON(filename string) (*NetWts, error) {
	fp, err := os.Open(filename)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	defer fp.Close()
	if filepath.Ext(filename) == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return nil, err
		}
		defer gzr.Close()
		return ReadWtsJSON(gzr)
	}
	return ReadWtsJSON(fp)
}

// ReadWtsJSON reads network weights in the format written by WriteWtsJSON.
func ReadWtsJSON(r io.Reader) (*NetWts, error) {
	nw := &NetWts{}
	if err := json.NewDecoder(r).Decode(nw); err != nil {
		err = fmt.Errorf("snn.ReadWtsJSON: %w", err)
		log.Println(err)
		return nil, err
	}
	return nw, nil
}

// LayerByName returns the weights record for the given layer, or nil.
func (nw *NetWts) LayerByName(name string) *LayerWts {
	for li := range nw.Layers {
		if nw.Layers[li].Layer == name {
			return &nw.Layers[li]
		}
	}
	return nil
}
