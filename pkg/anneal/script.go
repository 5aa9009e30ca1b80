package anneal

import (
	"github.com/Kreyren/Krura/pkg/config"
	"github.com/Kreyren/Krura/pkg/script"
)

// ScriptName is the profile section that enables this script.
const ScriptName = "anneal"

// settingData is the settings definition the script exposes to
// frontends, in the slicer plugin metadata schema.
const settingData = `{
    "name": "Anneal After Print",
    "key": "AnnealAfterPrint",
    "metadata": {},
    "version": 2,
    "settings":
    {
        "heatingElement":
        {
            "label": "Heating Element",
            "description": "Printer heating element to use for annealing.",
            "type": "enum",
            "options":
            {
                "bed": "Bed",
                "chamber": "Chamber",
                "all": "Bed and Chamber"
            },
            "default_value": "bed"
        },
        "annealBedTemp":
        {
            "label": "Bed Temperature",
            "description": "Bed temperature for annealing. Recommended bed temperature is greater of build plate printing or vendor specified annealing temperature for material. E.g. PC 90-110 C, PLA 60-90 C",
            "unit": "C",
            "type": "float",
            "default_value": 0,
            "minimum_value": 0,
            "enabled": "heatingElement == \"bed\" or heatingElement == \"all\""
        },
        "annealChamberTemp":
        {
            "label": "Chamber Temperature",
            "description": "Chamber temperature for annealing.",
            "unit": "C",
            "type": "float",
            "default_value": 0,
            "minimum_value": 0,
            "enabled": "heatingElement == \"chamber\" or heatingElement == \"all\""
        },
        "annealMinutes":
        {
            "label": "Annealing Target Temperature Duration",
            "description": "Duration in minutes to anneal at target temperature. After duration ends gradually cool down to End Cooling Temperature.",
            "unit": "min",
            "type": "int",
            "default_value": 120,
            "minimum_value": 0
        },
        "reminderBeep":
        {
            "label": "Beep on annealing start",
            "description": "",
            "type": "bool",
            "default_value": false
        },
        "endCoolingTemp":
        {
            "label": "End Cooling Temperature",
            "description": "Temperature to end gradual cooling at. After annealing at target temperature for specified duration temperature decreases by 1 degree after 1 minute at each step.",
            "unit": "C",
            "type": "float",
            "default_value": 50,
            "minimum_value": 0
        }
    }
}`

// Script adapts the annealing generator to the post-processing script
// contract.
type Script struct {
	element string
	params  Params
}

// NewScript builds the script from its profile section. Settings are
// validated here, at the boundary; the generator itself accepts its
// params as given. Both temperature options are read and validated
// regardless of the heatingElement selection (a slicer stores every
// setting whether or not its channel is enabled), but only a selected
// channel's temperature enters Params, so an unselected channel never
// contributes wait or cooldown commands.
func NewScript(sec *config.Section) (script.Script, error) {
	zero := 0.0
	zeroMin := 0

	element, err := sec.GetChoice("heatingElement", []string{"bed", "chamber", "all"}, "bed")
	if err != nil {
		return nil, err
	}

	bedTemp, err := sec.GetFloatWithBounds("annealBedTemp", &zero, nil, 0)
	if err != nil {
		return nil, err
	}
	chamberTemp, err := sec.GetFloatWithBounds("annealChamberTemp", &zero, nil, 0)
	if err != nil {
		return nil, err
	}

	var p Params
	if element == "bed" || element == "all" {
		p.BedTemp = bedTemp
	}
	if element == "chamber" || element == "all" {
		p.ChamberTemp = chamberTemp
	}
	p.Minutes, err = sec.GetIntWithBounds("annealMinutes", &zeroMin, nil, 120)
	if err != nil {
		return nil, err
	}
	p.StartBeep, err = sec.GetBool("reminderBeep", false)
	if err != nil {
		return nil, err
	}
	p.EndCoolingTemp, err = sec.GetFloatWithBounds("endCoolingTemp", &zero, nil, 50)
	if err != nil {
		return nil, err
	}

	return &Script{element: element, params: p}, nil
}

// Name returns the script's profile section name.
func (s *Script) Name() string {
	return ScriptName
}

// HeatingElement returns the resolved heating element selection.
func (s *Script) HeatingElement() string {
	return s.element
}

// SettingData returns the settings definition JSON.
func (s *Script) SettingData() string {
	return settingData
}

// Params returns the resolved annealing parameters.
func (s *Script) Params() Params {
	return s.params
}

// Execute generates the annealing block and splices it into the last
// buffer of the job.
func (s *Script) Execute(buffers []string) ([]string, error) {
	return Splice(buffers, Generate(s.params)), nil
}
