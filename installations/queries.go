package installations

const installationsQuery = `query mkInstallationList {
  xSInstallations {
    installations {
      numinst
      alias
      panel
      type
      name
      surname
      address
      city
      postcode
      province
      email
      phone
      due
      role
    }
  }
}`

const servicesQuery = `query Srv($numinst: String!, $uuid: String) {
  xSSrv(numinst: $numinst, uuid: $uuid) {
    res
    msg
    language
    installation {
      numinst
      role
      alias
      status
      panel
      sim
      instIbs
      services {
        idService
        active
        visible
        bde
        isPremium
        codOper
        request
        minWrapperVersion
        unprotectActive
        unprotectDeviceStatus
        instDate
        genericConfig {
          total
          attributes {
            key
            value
          }
        }
        attributes {
          attributes {
            name
            value
            active
          }
        }
      }
      configRepoUser {
        alarmPartitions {
          id
          enterStates
          leaveStates
        }
      }
      capabilities
    }
  }
}`

const devicesQuery = `query xSDeviceList($numinst: String!, $panel: String!) {
  xSDeviceList(numinst: $numinst, panel: $panel) {
    res
    devices {
      id
      code
      name
      type
      subtype
      remoteUse
      idService
      isActive
      serialNumber
      config {
        flags {
          pinCode
          doorbellButton
        }
      }
    }
  }
}`
