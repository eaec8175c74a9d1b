// latticeserver streams band-structure, DOS and Brillouin-zone data over a
// websocket so a browser front end can plot it live. The engine itself does
// no I/O; this binary is the consumer layer feeding parameters in and
// shipping arrays out.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/gorilla/websocket"

	"latticelab/config"
	"latticelab/core"
	"latticelab/physics"
)

type paramsMsg struct {
	T1       float64 `json:"t1"`
	T2       float64 `json:"t2"`
	LambdaSO float64 `json:"lambdaSO"`
	Exx      float64 `json:"exx"`
	Eyy      float64 `json:"eyy"`
	Exy      float64 `json:"exy"`
	Onsite   float64 `json:"onsite"`
}

type bandFrame struct {
	Type       string            `json:"type"`
	Distances  []float64         `json:"distances"`
	Valence    []float64         `json:"valence"`
	Conduction []float64         `json:"conduction"`
	Labels     []core.KPathLabel `json:"labels"`
}

type dosFrame struct {
	Type     string    `json:"type"`
	Energies []float64 `json:"energies"`
	Density  []float64 `json:"density"`
	Linear   []float64 `json:"linear"`
}

type bzFrame struct {
	Type string                 `json:"type"`
	Zone core.BrillouinZoneData `json:"zone"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	settingsPath := flag.String("settings", "settings.json", "Settings file")
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleClient(w, r, settings)
	})

	addr := fmt.Sprintf(":%d", settings.Server.Port)
	fmt.Printf("latticeserver listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func handleClient(w http.ResponseWriter, r *http.Request, settings config.Settings) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Geometry never changes; send it once per connection.
	if err := conn.WriteJSON(bzFrame{Type: "brillouinZone", Zone: physics.GetBrillouinZoneData()}); err != nil {
		return
	}

	params := core.TightBindingParameters{
		T1:       settings.Physics.T1,
		T2:       settings.Physics.T2,
		LambdaSO: settings.Physics.LambdaSO,
		Onsite:   settings.Physics.Onsite,
	}
	if err := sendSpectra(conn, params, settings); err != nil {
		return
	}

	for {
		var msg paramsMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		params = core.TightBindingParameters{
			T1:       msg.T1,
			T2:       msg.T2,
			LambdaSO: msg.LambdaSO,
			Exx:      msg.Exx,
			Eyy:      msg.Eyy,
			Exy:      msg.Exy,
			Onsite:   msg.Onsite,
		}
		if err := sendSpectra(conn, params, settings); err != nil {
			return
		}
	}
}

func sendSpectra(conn *websocket.Conn, params core.TightBindingParameters, settings config.Settings) error {
	bands := physics.CalculateBandStructure(params, settings.Physics.PathN)
	if err := conn.WriteJSON(bandFrame{
		Type:       "bandStructure",
		Distances:  bands.Path.Distances,
		Valence:    bands.Valence,
		Conduction: bands.Conduction,
		Labels:     bands.Path.Labels,
	}); err != nil {
		return err
	}

	// Bound the histogram by the band extrema with a little headroom.
	span := 3*params.T1 + 9*math.Abs(params.T2) + 1
	dos := physics.CalculateDOS(params,
		physics.EnergyRange{Min: params.Onsite - span, Max: params.Onsite + span},
		settings.Physics.DOSBins, settings.Physics.DOSMesh)
	return conn.WriteJSON(dosFrame{
		Type:     "dos",
		Energies: dos.Energies,
		Density:  dos.Density,
		Linear:   dos.LinearApprox,
	})
}
