package api

import "errors"

// Validator - интерфейс, который могут реализовать Payload-структуры.
// Декоратор хендлеров вызывает Validate автоматически после Unmarshal.
type Validator interface {
	Validate() error
}

func (p SetupPayload) Validate() error {
	if len(p.AgentIDs) == 0 && len(p.Areas) == 0 {
		return errors.New("setup must declare agents or areas")
	}
	for _, a := range p.Areas {
		if a.AreaName == "" {
			return errors.New("area_name is required")
		}
	}
	return nil
}

func (p LocationReachedPayload) Validate() error {
	if p.AgentID == "" {
		return errors.New("agent_id is required")
	}
	if p.LocationName == "" {
		return errors.New("location_name is required")
	}
	return nil
}

func (p ProximityPayload) Validate() error {
	if p.AgentID == "" || p.TargetID == "" {
		return errors.New("agent_id and target_id are required")
	}
	if p.EventType != "enter" && p.EventType != "exit" {
		return errors.New("event_type must be enter or exit")
	}
	return nil
}

func (p StateChangePayload) Validate() error {
	if p.AgentID == "" {
		return errors.New("agent_id is required")
	}
	if p.State == "" {
		return errors.New("state is required")
	}
	return nil
}

func (p DestinationChangePayload) Validate() error {
	if p.AgentID == "" {
		return errors.New("agent_id is required")
	}
	if p.TargetName == "" {
		return errors.New("targetName is required")
	}
	return nil
}
