package alarm

const checkAlarmQuery = `query CheckAlarm($numinst: String!, $panel: String!) {
  xSCheckAlarm(numinst: $numinst, panel: $panel) {
    res
    msg
    referenceId
  }
}`

const armPanelMutation = `mutation xSArmPanel($numinst: String!, $request: ArmCodeRequest!, $panel: String!, $currentStatus: String, $forceArmingRemoteId: String, $armAndLock: Boolean) {
  xSArmPanel(numinst: $numinst, request: $request, panel: $panel, currentStatus: $currentStatus, forceArmingRemoteId: $forceArmingRemoteId, armAndLock: $armAndLock) {
    res
    msg
    referenceId
  }
}`

const armStatusQuery = `query ArmStatus($numinst: String!, $request: ArmCodeRequest, $panel: String!, $referenceId: String!, $counter: Int!, $forceArmingRemoteId: String, $armAndLock: Boolean) {
  xSArmStatus(numinst: $numinst, panel: $panel, referenceId: $referenceId, counter: $counter, request: $request, forceArmingRemoteId: $forceArmingRemoteId, armAndLock: $armAndLock) {
    res
    msg
    status
    protomResponse
    protomResponseDate
    numinst
    requestId
    error {
      code
      type
      allowForcing
      exceptionsNumber
      referenceId
      suid
    }
  }
}`

const disarmPanelMutation = `mutation xSDisarmPanel($numinst: String!, $request: DisarmCodeRequest!, $panel: String!) {
  xSDisarmPanel(numinst: $numinst, request: $request, panel: $panel) {
    res
    msg
    referenceId
  }
}`

const disarmStatusQuery = `query DisarmStatus($numinst: String!, $panel: String!, $referenceId: String!, $counter: Int!, $request: DisarmCodeRequest) {
  xSDisarmStatus(numinst: $numinst, panel: $panel, referenceId: $referenceId, counter: $counter, request: $request) {
    res
    msg
    status
    protomResponse
    protomResponseDate
    numinst
    requestId
    error {
      code
      type
      allowForcing
      exceptionsNumber
      referenceId
      suid
    }
  }
}`

const checkAlarmStatusQuery = `query CheckAlarmStatus($numinst: String!, $idService: String!, $panel: String!, $referenceId: String!) {
  xSCheckAlarmStatus(numinst: $numinst, idService: $idService, panel: $panel, referenceId: $referenceId) {
    res
    msg
    status
    numinst
    protomResponse
    protomResponseDate
    forcedArmed
  }
}`
